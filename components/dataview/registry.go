package dataview

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ResourceHook lets packages register resources during init().
type ResourceHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []ResourceHook
)

// RegisterResourceHook registers a hook executed against new registries.
func RegisterResourceHook(h ResourceHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry implements ResourceRegistry with hook + manifest support.
type Registry struct {
	mu        sync.RWMutex
	resources map[string]ResourceConfig
}

// NewRegistry builds a registry seeded with the marketplace resources and applies global hooks.
func NewRegistry() *Registry {
	reg := NewEmptyRegistry()
	for _, cfg := range DefaultResources() {
		_ = reg.Register(cfg)
	}
	_ = reg.ApplyHooks()
	return reg
}

// NewEmptyRegistry builds a registry without defaults or hooks.
func NewEmptyRegistry() *Registry {
	return &Registry{resources: map[string]ResourceConfig{}}
}

// ApplyHooks executes registered resource hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// Register stores a resource definition, replacing any previous one with the same code.
func (r *Registry) Register(cfg ResourceConfig) error {
	if cfg.Code == "" {
		return fmt.Errorf("resource code is required")
	}
	if cfg.Endpoint == "" {
		return fmt.Errorf("resource %s: endpoint is required", cfg.Code)
	}
	cfg.normalize()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[cfg.Code] = cfg
	return nil
}

// Resource fetches a resource definition by code.
func (r *Registry) Resource(code string) (ResourceConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.resources[code]
	return cfg, ok
}

// Resources returns all registered resources ordered by code.
func (r *Registry) Resources() []ResourceConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ResourceConfig, 0, len(r.resources))
	for _, cfg := range r.resources {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (c *ResourceConfig) normalize() {
	if c.IDField == "" {
		c.IDField = defaultIDField
	}
	if c.Name == "" {
		c.Name = humanize(c.Code)
	}
	c.Endpoint = "/" + strings.Trim(c.Endpoint, "/")
	c.NameLocalized = normalizeLocaleMap(c.NameLocalized)
	c.Columns = append([]Column(nil), c.Columns...)
	for i := range c.Columns {
		if c.Columns[i].Label == "" {
			c.Columns[i].Label = humanize(c.Columns[i].Field)
		}
		c.Columns[i].LabelLocalized = normalizeLocaleMap(c.Columns[i].LabelLocalized)
	}
}
