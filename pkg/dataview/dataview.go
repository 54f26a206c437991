package dataview

import (
	core "github.com/goliatone/go-dataview/components/dataview"
)

// Service exposes the underlying components/dataview.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// View is the per-viewer view of one resource.
type View = core.View

// ViewerContext identifies the signed-in user.
type ViewerContext = core.ViewerContext

// ResourceConfig describes one admin resource.
type ResourceConfig = core.ResourceConfig

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewRegistry returns a registry seeded with the built-in resources.
func NewRegistry() *core.Registry {
	return core.NewRegistry()
}
