package dataview

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	name string
	data any
}

func (s *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	s.name = name
	s.data = data
	for _, w := range out {
		_, _ = io.WriteString(w, "<table/>")
	}
	return "<table/>", nil
}

func TestControllerTablePayload(t *testing.T) {
	backend := &fakeBackend{records: []Record{
		{"id": "1", "name": "<b>Alpha</b>", "status": "active", "price": 12.5},
		{"id": "2", "name": "Beta & Co", "status": "draft", "price": 3},
	}}
	service := NewService(Options{Backend: backend})
	controller := NewController(ControllerOptions{Service: service})
	viewer := ViewerContext{UserID: "u1", Roles: []string{"admin"}, Locale: "es-MX"}

	require.NoError(t, service.SavePreset(context.Background(), viewer, "products", Preset{
		Name:    "status first",
		Default: true,
		Columns: []string{"status"},
		Sort:    SortState{Field: "price", Direction: Ascending},
	}))

	payload, err := controller.Table(context.Background(), viewer, "products")
	require.NoError(t, err)

	assert.Equal(t, "Productos", payload.Title)
	require.NotEmpty(t, payload.Columns)
	assert.Equal(t, "status", payload.Columns[0].Field)
	assert.Equal(t, "Estado", payload.Columns[0].Label)
	assert.Equal(t, StatusReady, payload.Status)

	require.Len(t, payload.Rows, 2)
	assert.Equal(t, "2", payload.Rows[0].ID)
	assert.Equal(t, "Beta & Co", payload.Rows[0].Cells[1])
	assert.Equal(t, "Alpha", payload.Rows[1].Cells[1])

	var priceCol ColumnPayload
	for _, col := range payload.Columns {
		if col.Field == "price" {
			priceCol = col
		}
	}
	assert.Equal(t, Ascending, priceCol.Sorted)
	assert.Len(t, payload.Actions, 2)
}

func TestControllerRenderTableUsesRenderer(t *testing.T) {
	renderer := &stubRenderer{}
	service := NewService(Options{Backend: &fakeBackend{records: sampleProducts()}})
	controller := NewController(ControllerOptions{
		Service:    service,
		Renderer:   renderer,
		Chart:      NewSummaryChart(),
		ChartField: map[string]string{"products": "status"},
	})
	viewer := ViewerContext{UserID: "u1", Roles: []string{"seller"}}

	html, err := controller.RenderTable(context.Background(), viewer, "products")
	require.NoError(t, err)
	assert.Equal(t, "<table/>", html)
	assert.Equal(t, "table", renderer.name)

	data, ok := renderer.data.(map[string]any)
	require.True(t, ok)
	payload, ok := data["table"].(TablePayload)
	require.True(t, ok)
	assert.NotEmpty(t, payload.Chart)
}

func TestControllerRequiresRenderer(t *testing.T) {
	controller := NewController(ControllerOptions{Service: NewService(Options{Backend: &fakeBackend{}})})
	_, err := controller.RenderTable(context.Background(), ViewerContext{Roles: []string{"admin"}}, "products")
	assert.Error(t, err)
}
