package rest

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	dataview "github.com/goliatone/go-dataview/components/dataview"
)

// MemoryBackend keeps collections in memory. It backs demos and the CLI's offline mode.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]dataview.Record
}

var _ dataview.Backend = (*MemoryBackend)(nil)

// NewMemoryBackend seeds the backend with collections keyed by resource code.
func NewMemoryBackend(seed map[string][]dataview.Record) *MemoryBackend {
	data := make(map[string][]dataview.Record, len(seed))
	for code, records := range seed {
		copied := make([]dataview.Record, len(records))
		for i, r := range records {
			copied[i] = r.Clone()
		}
		data[code] = copied
	}
	return &MemoryBackend{data: data}
}

// List returns a copy of the collection.
func (m *MemoryBackend) List(_ context.Context, resource dataview.ResourceConfig) ([]dataview.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := m.data[resource.Code]
	out := make([]dataview.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out, nil
}

// Get returns one record by id.
func (m *MemoryBackend) Get(_ context.Context, resource dataview.ResourceConfig, id string) (dataview.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx := m.indexOf(resource, id)
	if idx < 0 {
		return nil, fmt.Errorf("rest: %s %s: %w", resource.Code, id, dataview.ErrRecordNotFound)
	}
	return m.data[resource.Code][idx].Clone(), nil
}

// Execute applies the action body (or deletes) and returns the stored record.
func (m *MemoryBackend) Execute(_ context.Context, resource dataview.ResourceConfig, id string, action dataview.RowAction) (dataview.ActionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(resource, id)
	if idx < 0 {
		return dataview.ActionResult{}, &APIError{Status: http.StatusNotFound, Message: "record not found"}
	}
	records := m.data[resource.Code]
	if action.Deletes {
		m.data[resource.Code] = append(records[:idx:idx], records[idx+1:]...)
		return dataview.ActionResult{Success: true}, nil
	}
	updated := records[idx].Clone()
	idField := resource.IDField
	if idField == "" {
		idField = "id"
	}
	for _, field := range action.Toggle {
		current, _ := updated[field].(bool)
		updated[field] = !current
	}
	for k, v := range action.Body {
		if k == idField {
			continue
		}
		updated[k] = v
	}
	records[idx] = updated
	return dataview.ActionResult{Success: true, Record: updated.Clone()}, nil
}

// Set replaces a collection.
func (m *MemoryBackend) Set(code string, records []dataview.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[code] = records
}

func (m *MemoryBackend) indexOf(resource dataview.ResourceConfig, id string) int {
	for i, r := range m.data[resource.Code] {
		if r.ID(resource.IDField) == id {
			return i
		}
	}
	return -1
}
