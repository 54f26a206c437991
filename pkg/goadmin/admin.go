package goadmin

import (
	"context"
	"errors"
	"fmt"

	dataviewpkg "github.com/goliatone/go-dataview/pkg/dataview"
)

// MenuBuilder ensures data view entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures resource link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the data view service + feature flags into an admin shell.
type Config struct {
	EnableDataViews bool
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *dataviewpkg.Service
	// RoutePrefix is joined with the resource code, e.g. admin.data.products.
	RoutePrefix string
	Icon        string
	// StartPosition offsets the generated entries within the menu.
	StartPosition int
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed resource menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableDataViews && cfg.Service == nil {
		return nil, errors.New("goadmin: data view service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.RoutePrefix == "" {
		cfg.RoutePrefix = "admin.data"
	}
	if cfg.Icon == "" {
		cfg.Icon = "table"
	}
	return &Admin{cfg: cfg}, nil
}

// DataViews exposes the configured service when enabled.
func (a *Admin) DataViews() *dataviewpkg.Service {
	if !a.cfg.EnableDataViews {
		return nil
	}
	return a.cfg.Service
}

// Bootstrap seeds one menu entry per resource the viewer may open, labeled in the
// viewer's locale.
func (a *Admin) Bootstrap(ctx context.Context, viewer dataviewpkg.ViewerContext) error {
	if !a.cfg.EnableDataViews || a.cfg.MenuBuilder == nil {
		return nil
	}
	for i, res := range a.cfg.Service.Resources(ctx, viewer) {
		item := MenuItem{
			Label:    res.NameForLocale(viewer.Locale),
			Route:    a.cfg.RoutePrefix + "." + res.Code,
			Icon:     a.cfg.Icon,
			Position: a.cfg.StartPosition + i,
		}
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			return fmt.Errorf("goadmin: ensure menu item %s: %w", res.Code, err)
		}
	}
	return nil
}
