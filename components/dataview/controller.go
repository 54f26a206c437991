package dataview

import (
	"context"
	"errors"
	"html"
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const tableTemplate = "table"

// ColumnPayload is a localized column header ready for rendering.
type ColumnPayload struct {
	Field      string    `json:"field"`
	Label      string    `json:"label"`
	Sortable   bool      `json:"sortable"`
	Filterable bool      `json:"filterable"`
	Sorted     Direction `json:"sorted,omitempty"`
}

// RowPayload is one rendered row. Cells follow the column order.
type RowPayload struct {
	ID     string   `json:"id"`
	Cells  []string `json:"cells"`
	Busy   bool     `json:"busy,omitempty"`
	Record Record   `json:"record"`
}

// ActionPayload exposes a row action button.
type ActionPayload struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// TablePayload is the serializable render state of a view.
type TablePayload struct {
	Resource  string          `json:"resource"`
	Title     string          `json:"title"`
	Columns   []ColumnPayload `json:"columns"`
	Rows      []RowPayload    `json:"rows"`
	Actions   []ActionPayload `json:"actions,omitempty"`
	Page      PageInfo        `json:"page"`
	Total     int             `json:"total"`
	Matched   int             `json:"matched"`
	Search    string          `json:"search,omitempty"`
	Filter    FilterState     `json:"filter"`
	Sort      SortState       `json:"sort"`
	Status    Status          `json:"status"`
	Error     string          `json:"error,omitempty"`
	Retryable bool            `json:"retryable,omitempty"`
	Chart     string          `json:"chart,omitempty"`
}

// ControllerOptions configures the controller collaborators.
type ControllerOptions struct {
	Service    *Service
	Renderer   Renderer
	Chart      *SummaryChart
	Translator TranslationService
	// ChartField selects the field grouped in the summary chart, keyed by resource code.
	ChartField map[string]string
}

// Controller turns view snapshots into JSON payloads and HTML.
type Controller struct {
	service    *Service
	renderer   Renderer
	chart      *SummaryChart
	translator TranslationService
	chartField map[string]string
	policy     *bluemonday.Policy
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	return &Controller{
		service:    opts.Service,
		renderer:   opts.Renderer,
		chart:      opts.Chart,
		translator: opts.Translator,
		chartField: opts.ChartField,
		policy:     bluemonday.StrictPolicy(),
	}
}

// Service exposes the wrapped service.
func (c *Controller) Service() *Service {
	return c.service
}

// Table returns the current page of the viewer's view as a payload, loading it on first use.
func (c *Controller) Table(ctx context.Context, viewer ViewerContext, code string) (TablePayload, error) {
	if c.service == nil {
		return TablePayload{}, errors.New("dataview: controller has no service")
	}
	snap, err := c.service.Snapshot(ctx, viewer, code)
	if err != nil {
		return TablePayload{}, err
	}
	view, err := c.service.Open(ctx, viewer, code)
	if err != nil {
		return TablePayload{}, err
	}
	resource := view.Resource()

	var order []string
	if presets, err := c.service.Presets(ctx, viewer, code); err == nil {
		if preset, ok := defaultPreset(presets); ok {
			order = preset.Columns
		}
	}
	payload := c.buildPayload(ctx, viewer, resource, snap, order)

	if field := c.chartField[code]; field != "" && c.chart != nil && len(snap.Records) > 0 {
		chart, err := c.chart.Render(resource, field, view.Compute())
		if err != nil {
			c.service.opts.Logger.Warn("render summary chart failed", "resource", code, "error", err)
		} else {
			payload.Chart = chart
		}
	}
	return payload, nil
}

// RenderTable renders the table template for the viewer's view.
func (c *Controller) RenderTable(ctx context.Context, viewer ViewerContext, code string, out ...io.Writer) (string, error) {
	if c.renderer == nil {
		return "", errors.New("dataview: controller has no renderer")
	}
	payload, err := c.Table(ctx, viewer, code)
	if err != nil {
		return "", err
	}
	return c.renderer.Render(tableTemplate, map[string]any{"table": payload}, out...)
}

func (c *Controller) buildPayload(ctx context.Context, viewer ViewerContext, resource ResourceConfig, snap Snapshot, order []string) TablePayload {
	locale := viewer.Locale
	columns := applyColumnOrder(resource.Columns, order)

	payload := TablePayload{
		Resource:  resource.Code,
		Title:     translateOrFallback(ctx, c.translator, "dataview.resource."+resource.Code, locale, resource.NameForLocale(locale)),
		Columns:   make([]ColumnPayload, 0, len(columns)),
		Rows:      make([]RowPayload, 0, len(snap.Records)),
		Page:      snap.Page,
		Total:     snap.Total,
		Matched:   snap.Matched,
		Search:    snap.Filter.Search,
		Filter:    snap.Filter,
		Sort:      snap.Sort,
		Status:    snap.Status,
		Error:     snap.Error,
		Retryable: snap.Retryable,
	}
	for _, col := range columns {
		cp := ColumnPayload{
			Field:      col.Field,
			Label:      col.LabelForLocale(locale),
			Sortable:   col.Sortable,
			Filterable: col.Filterable,
		}
		if snap.Sort.Field == col.Field {
			cp.Sorted = snap.Sort.Direction
		}
		payload.Columns = append(payload.Columns, cp)
	}
	for _, action := range resource.Actions {
		label := action.Label
		if label == "" {
			label = humanize(action.Name)
		}
		payload.Actions = append(payload.Actions, ActionPayload{Name: action.Name, Label: label})
	}

	busy := make(map[string]struct{}, len(snap.Busy))
	for _, id := range snap.Busy {
		busy[id] = struct{}{}
	}
	for _, record := range snap.Records {
		id := record.ID(resource.IDField)
		row := RowPayload{
			ID:     id,
			Cells:  make([]string, len(columns)),
			Record: record,
		}
		_, row.Busy = busy[id]
		for i, col := range columns {
			value, _ := record.Field(col.Field)
			row.Cells[i] = c.cell(value)
		}
		payload.Rows = append(payload.Rows, row)
	}
	return payload
}

// cell strips any markup the backend let through and returns plain text.
func (c *Controller) cell(value any) string {
	text := formatScalar(value)
	if text == "" || !strings.ContainsAny(text, "<>&") {
		return text
	}
	return html.UnescapeString(c.policy.Sanitize(text))
}
