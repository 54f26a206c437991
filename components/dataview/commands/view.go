package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dataview "github.com/goliatone/go-dataview/components/dataview"
)

// ViewInput addresses one viewer's view of a resource.
type ViewInput struct {
	Viewer   dataview.ViewerContext `json:"viewer"`
	Resource string                 `json:"resource"`
}

type viewService interface {
	Open(ctx context.Context, viewer dataview.ViewerContext, code string) (*dataview.View, error)
}

func openView(ctx context.Context, service viewService, in ViewInput) (*dataview.View, error) {
	if service == nil {
		return nil, errors.New("view command requires service")
	}
	if in.Resource == "" {
		return nil, errors.New("view command requires resource")
	}
	return service.Open(ctx, in.Viewer, in.Resource)
}

// LoadViewCommand fetches (or refetches) the collection behind a view.
type LoadViewCommand struct {
	service   viewService
	telemetry Telemetry
}

// NewLoadViewCommand creates the command.
func NewLoadViewCommand(service viewService, telemetry Telemetry) *LoadViewCommand {
	return &LoadViewCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ViewInput] = (*LoadViewCommand)(nil)

// Execute loads the view. A load superseded by a newer one is not an error.
func (c *LoadViewCommand) Execute(ctx context.Context, msg ViewInput) error {
	view, err := openView(ctx, c.service, msg)
	if err != nil {
		return err
	}
	if err := view.Load(ctx); err != nil && !errors.Is(err, dataview.ErrStaleResponse) {
		return err
	}
	c.telemetry.Record(ctx, "dataview.command.load", map[string]any{
		"resource": msg.Resource,
		"user_id":  msg.Viewer.UserID,
	})
	return nil
}

// SearchInput updates the free text query.
type SearchInput struct {
	ViewInput
	Text string `json:"text"`
}

// SearchCommand sets the search text on a view.
type SearchCommand struct {
	service   viewService
	telemetry Telemetry
}

// NewSearchCommand creates the command.
func NewSearchCommand(service viewService, telemetry Telemetry) *SearchCommand {
	return &SearchCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SearchInput] = (*SearchCommand)(nil)

// Execute updates the search text.
func (c *SearchCommand) Execute(ctx context.Context, msg SearchInput) error {
	view, err := openView(ctx, c.service, msg.ViewInput)
	if err != nil {
		return err
	}
	view.SetSearchText(msg.Text)
	c.telemetry.Record(ctx, "dataview.command.search", map[string]any{
		"resource": msg.Resource,
		"length":   len(msg.Text),
	})
	return nil
}

// FilterInput sets or clears (nil Value) an equality filter.
type FilterInput struct {
	ViewInput
	Field string `json:"field"`
	Value any    `json:"value"`
}

// FilterCommand applies an equality filter.
type FilterCommand struct {
	service   viewService
	telemetry Telemetry
}

// NewFilterCommand creates the command.
func NewFilterCommand(service viewService, telemetry Telemetry) *FilterCommand {
	return &FilterCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[FilterInput] = (*FilterCommand)(nil)

// Execute sets the filter.
func (c *FilterCommand) Execute(ctx context.Context, msg FilterInput) error {
	if msg.Field == "" {
		return errors.New("filter command requires field")
	}
	view, err := openView(ctx, c.service, msg.ViewInput)
	if err != nil {
		return err
	}
	view.SetEqualityFilter(msg.Field, msg.Value)
	c.telemetry.Record(ctx, "dataview.command.filter", map[string]any{
		"resource": msg.Resource,
		"field":    msg.Field,
		"cleared":  msg.Value == nil,
	})
	return nil
}

// SortInput names the column header that was activated.
type SortInput struct {
	ViewInput
	Field string `json:"field"`
}

// SortCommand toggles sorting on a column.
type SortCommand struct {
	service   viewService
	telemetry Telemetry
}

// NewSortCommand creates the command.
func NewSortCommand(service viewService, telemetry Telemetry) *SortCommand {
	return &SortCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SortInput] = (*SortCommand)(nil)

// Execute toggles the sort.
func (c *SortCommand) Execute(ctx context.Context, msg SortInput) error {
	view, err := openView(ctx, c.service, msg.ViewInput)
	if err != nil {
		return err
	}
	view.SetSort(msg.Field)
	state := view.Sort()
	c.telemetry.Record(ctx, "dataview.command.sort", map[string]any{
		"resource":  msg.Resource,
		"field":     state.Field,
		"direction": string(state.Direction),
	})
	return nil
}

// PageInput selects a 1-based page.
type PageInput struct {
	ViewInput
	Page int `json:"page"`
}

// PageCommand moves a view to another page.
type PageCommand struct {
	service viewService
}

// NewPageCommand creates the command.
func NewPageCommand(service viewService) *PageCommand {
	return &PageCommand{service: service}
}

var _ gocommand.Commander[PageInput] = (*PageCommand)(nil)

// Execute selects the page.
func (c *PageCommand) Execute(ctx context.Context, msg PageInput) error {
	view, err := openView(ctx, c.service, msg.ViewInput)
	if err != nil {
		return err
	}
	view.SetPage(msg.Page)
	return nil
}

// ResetFiltersCommand clears search, filters and sort in one step.
type ResetFiltersCommand struct {
	service   viewService
	telemetry Telemetry
}

// NewResetFiltersCommand creates the command.
func NewResetFiltersCommand(service viewService, telemetry Telemetry) *ResetFiltersCommand {
	return &ResetFiltersCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ViewInput] = (*ResetFiltersCommand)(nil)

// Execute resets the view.
func (c *ResetFiltersCommand) Execute(ctx context.Context, msg ViewInput) error {
	view, err := openView(ctx, c.service, msg)
	if err != nil {
		return err
	}
	view.ResetFilters()
	c.telemetry.Record(ctx, "dataview.command.reset", map[string]any{"resource": msg.Resource})
	return nil
}
