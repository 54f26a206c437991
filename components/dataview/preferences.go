package dataview

import (
	"context"
	"fmt"
	"sync"
)

// Preset is a saved filter/sort combination for one resource.
type Preset struct {
	Name    string      `json:"name" yaml:"name"`
	Filter  FilterState `json:"filter" yaml:"filter"`
	Sort    SortState   `json:"sort" yaml:"sort"`
	Columns []string    `json:"columns,omitempty" yaml:"columns,omitempty"`
	Default bool        `json:"default,omitempty" yaml:"default,omitempty"`
}

// PresetStore persists presets per viewer and resource.
type PresetStore interface {
	Presets(ctx context.Context, viewer ViewerContext, resource string) ([]Preset, error)
	SavePreset(ctx context.Context, viewer ViewerContext, resource string, preset Preset) error
}

// InMemoryPresetStore provides a concurrency-safe default store.
type InMemoryPresetStore struct {
	mu   sync.RWMutex
	data map[string][]Preset
}

// NewInMemoryPresetStore creates an empty preset store.
func NewInMemoryPresetStore() *InMemoryPresetStore {
	return &InMemoryPresetStore{
		data: make(map[string][]Preset),
	}
}

// Presets returns stored presets in save order.
func (s *InMemoryPresetStore) Presets(_ context.Context, viewer ViewerContext, resource string) ([]Preset, error) {
	if viewer.UserID == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.data[presetKey(viewer, resource)]
	out := make([]Preset, len(stored))
	for i, p := range stored {
		out[i] = p
		out[i].Filter = p.Filter.clone()
		out[i].Columns = append([]string(nil), p.Columns...)
	}
	return out, nil
}

// SavePreset stores or replaces a preset by name. Saving a default preset clears the
// flag on the others.
func (s *InMemoryPresetStore) SavePreset(_ context.Context, viewer ViewerContext, resource string, preset Preset) error {
	if viewer.UserID == "" {
		return fmt.Errorf("preset store requires viewer user id")
	}
	if preset.Name == "" {
		return fmt.Errorf("preset name is required")
	}
	preset.Filter = preset.Filter.clone()
	key := presetKey(viewer, resource)
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.data[key]
	replaced := false
	for i := range list {
		if preset.Default {
			list[i].Default = false
		}
		if list[i].Name == preset.Name {
			list[i] = preset
			replaced = true
		}
	}
	if !replaced {
		list = append(list, preset)
	}
	s.data[key] = list
	return nil
}

func presetKey(viewer ViewerContext, resource string) string {
	return viewer.UserID + "::" + resource
}

func defaultPreset(presets []Preset) (Preset, bool) {
	for _, p := range presets {
		if p.Default {
			return p, true
		}
	}
	return Preset{}, false
}
