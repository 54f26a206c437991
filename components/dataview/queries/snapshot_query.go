package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dataview "github.com/goliatone/go-dataview/components/dataview"
)

// SnapshotInput addresses one viewer's view of a resource.
type SnapshotInput struct {
	Viewer   dataview.ViewerContext
	Resource string
}

type snapshotService interface {
	Snapshot(ctx context.Context, viewer dataview.ViewerContext, code string) (dataview.Snapshot, error)
}

// SnapshotQuery returns the current page of a view, loading it on first use.
type SnapshotQuery struct {
	service snapshotService
}

// NewSnapshotQuery builds the query.
func NewSnapshotQuery(service snapshotService) *SnapshotQuery {
	return &SnapshotQuery{service: service}
}

var _ gocommand.Querier[SnapshotInput, dataview.Snapshot] = (*SnapshotQuery)(nil)

// Query resolves the snapshot for the viewer.
func (q *SnapshotQuery) Query(ctx context.Context, input SnapshotInput) (dataview.Snapshot, error) {
	return q.service.Snapshot(ctx, input.Viewer, input.Resource)
}

type tableService interface {
	Table(ctx context.Context, viewer dataview.ViewerContext, code string) (dataview.TablePayload, error)
}

// TableQuery returns the render-ready payload for a view.
type TableQuery struct {
	service tableService
}

// NewTableQuery builds the query.
func NewTableQuery(service tableService) *TableQuery {
	return &TableQuery{service: service}
}

var _ gocommand.Querier[SnapshotInput, dataview.TablePayload] = (*TableQuery)(nil)

// Query resolves the table payload.
func (q *TableQuery) Query(ctx context.Context, input SnapshotInput) (dataview.TablePayload, error) {
	return q.service.Table(ctx, input.Viewer, input.Resource)
}
