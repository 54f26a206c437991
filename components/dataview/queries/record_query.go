package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dataview "github.com/goliatone/go-dataview/components/dataview"
)

// RecordInput identifies a single record for the detail endpoint.
type RecordInput struct {
	Viewer   dataview.ViewerContext
	Resource string
	ID       string
}

type recordService interface {
	Record(ctx context.Context, viewer dataview.ViewerContext, code, id string) (dataview.Record, error)
}

// RecordQuery fetches one record from the backend.
type RecordQuery struct {
	service recordService
}

// NewRecordQuery builds the query.
func NewRecordQuery(service recordService) *RecordQuery {
	return &RecordQuery{service: service}
}

var _ gocommand.Querier[RecordInput, dataview.Record] = (*RecordQuery)(nil)

// Query fetches the record.
func (q *RecordQuery) Query(ctx context.Context, input RecordInput) (dataview.Record, error) {
	return q.service.Record(ctx, input.Viewer, input.Resource, input.ID)
}

type resourcesService interface {
	Resources(ctx context.Context, viewer dataview.ViewerContext) []dataview.ResourceConfig
}

// ResourcesQuery lists the resources a viewer may open.
type ResourcesQuery struct {
	service resourcesService
}

// NewResourcesQuery builds the query.
func NewResourcesQuery(service resourcesService) *ResourcesQuery {
	return &ResourcesQuery{service: service}
}

var _ gocommand.Querier[dataview.ViewerContext, []dataview.ResourceConfig] = (*ResourcesQuery)(nil)

// Query lists the resources.
func (q *ResourcesQuery) Query(ctx context.Context, viewer dataview.ViewerContext) ([]dataview.ResourceConfig, error) {
	return q.service.Resources(ctx, viewer), nil
}
