package dataview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

var errMissingBackend = errors.New("dataview: backend not configured")

// Backend is a REST collaborator able to both list and mutate records.
type Backend interface {
	RecordSource
	ActionExecutor
}

// BackendResolver returns the backend carrying the viewer's credentials.
type BackendResolver func(ctx context.Context, viewer ViewerContext) (Backend, error)

// Options configures the Service. Every collaborator is provided via interface so
// applications can swap implementations.
type Options struct {
	Registry   ResourceRegistry
	Backend    Backend
	BackendFor BackendResolver
	Authorizer Authorizer
	Presets    PresetStore
	Validator  PatchValidator
	Notifier   Notifier
	Telemetry  Telemetry
	Logger     Logger
}

// Service owns one View per viewer and resource.
type Service struct {
	opts Options

	mu    sync.Mutex
	views map[string]*View
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}
	if opts.Authorizer == nil {
		opts.Authorizer = RoleAuthorizer{}
	}
	if opts.Presets == nil {
		opts.Presets = NewInMemoryPresetStore()
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.Notifier == nil {
		opts.Notifier = noopNotifier{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	opts.Logger = normalizeLogger(opts.Logger)
	return &Service{opts: opts, views: map[string]*View{}}
}

// Registry exposes the resource registry.
func (s *Service) Registry() ResourceRegistry {
	return s.opts.Registry
}

// Notifier exposes the configured notifier.
func (s *Service) Notifier() Notifier {
	return s.opts.Notifier
}

// Resources lists the resources the viewer may open.
func (s *Service) Resources(ctx context.Context, viewer ViewerContext) []ResourceConfig {
	all := s.opts.Registry.Resources()
	out := make([]ResourceConfig, 0, len(all))
	for _, res := range all {
		if s.opts.Authorizer.CanView(ctx, viewer, res) {
			out = append(out, res)
		}
	}
	return out
}

// Open returns the viewer's view for resource, creating it on first use and applying
// the viewer's default preset. The view is not loaded.
func (s *Service) Open(ctx context.Context, viewer ViewerContext, code string) (*View, error) {
	resource, err := s.resource(ctx, viewer, code)
	if err != nil {
		return nil, err
	}
	key := viewKey(viewer, code)
	s.mu.Lock()
	if view, ok := s.views[key]; ok {
		s.mu.Unlock()
		return view, nil
	}
	s.mu.Unlock()

	backend, err := s.backend(ctx, viewer)
	if err != nil {
		return nil, err
	}
	view := NewView(ViewOptions{
		Resource:  resource,
		Source:    backend,
		Executor:  backend,
		Notifier:  s.opts.Notifier,
		Validator: s.opts.Validator,
		Telemetry: s.opts.Telemetry,
		Logger:    s.opts.Logger,
		Viewer:    viewer,
	})
	if presets, err := s.opts.Presets.Presets(ctx, viewer, code); err == nil {
		if preset, ok := defaultPreset(presets); ok {
			view.ApplyPreset(preset)
		}
	} else {
		s.opts.Logger.Warn("load presets failed", "resource", code, "viewer", viewer.UserID, "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.views[key]; ok {
		return existing, nil
	}
	s.views[key] = view
	s.recordTelemetry(ctx, "dataview.view.open", map[string]any{
		"resource": code,
		"viewer":   viewer.UserID,
	})
	return view, nil
}

// Snapshot opens the view, loads it when it has never been loaded, and returns its state.
// Fetch failures are reported inside the snapshot rather than as an error.
func (s *Service) Snapshot(ctx context.Context, viewer ViewerContext, code string) (Snapshot, error) {
	view, err := s.Open(ctx, viewer, code)
	if err != nil {
		return Snapshot{}, err
	}
	if view.Snapshot().Status == StatusIdle {
		if err := view.Load(ctx); err != nil && !isViewStateError(err) {
			return Snapshot{}, err
		}
	}
	return view.Snapshot(), nil
}

// Record fetches a single record through the detail endpoint.
func (s *Service) Record(ctx context.Context, viewer ViewerContext, code, id string) (Record, error) {
	if id == "" {
		return nil, errMissingID
	}
	resource, err := s.resource(ctx, viewer, code)
	if err != nil {
		return nil, err
	}
	backend, err := s.backend(ctx, viewer)
	if err != nil {
		return nil, err
	}
	record, err := backend.Get(ctx, resource, id)
	if err != nil {
		return nil, &FetchError{Resource: code, Err: err}
	}
	return record, nil
}

// Close discards the viewer's view for resource.
func (s *Service) Close(viewer ViewerContext, code string) {
	key := viewKey(viewer, code)
	s.mu.Lock()
	view, ok := s.views[key]
	delete(s.views, key)
	s.mu.Unlock()
	if ok {
		view.Close()
	}
}

// InvalidateResources drops cached views and compiled schemas for codes so the next
// Open picks up the registry's current configuration. Dropped views are closed.
func (s *Service) InvalidateResources(codes ...string) {
	if forgetter, ok := s.opts.Validator.(interface{ Forget(string) }); ok {
		for _, code := range codes {
			forgetter.Forget(code)
		}
	}
	var stale []*View
	s.mu.Lock()
	for key, view := range s.views {
		for _, code := range codes {
			if strings.HasSuffix(key, "::"+code) {
				stale = append(stale, view)
				delete(s.views, key)
				break
			}
		}
	}
	s.mu.Unlock()
	for _, view := range stale {
		view.Close()
	}
	if len(stale) > 0 {
		s.opts.Logger.Info("resource views invalidated", "resources", codes, "views", len(stale))
	}
}

// WatchManifest reloads path into the registry on change and invalidates the
// resources each successful reload touched. It blocks until ctx is done.
func (s *Service) WatchManifest(ctx context.Context, path string, onReload func(*ManifestDocument, error)) error {
	registry, ok := s.opts.Registry.(*Registry)
	if !ok {
		return fmt.Errorf("dataview: registry %T cannot reload manifests", s.opts.Registry)
	}
	return registry.WatchManifest(ctx, path, func(doc *ManifestDocument, err error) {
		if err == nil && doc != nil {
			codes := make([]string, 0, len(doc.Resources))
			for _, res := range doc.Resources {
				codes = append(codes, res.Code)
			}
			s.InvalidateResources(codes...)
		}
		if onReload != nil {
			onReload(doc, err)
		}
	})
}

// LoadAll opens and loads the viewer's views for codes concurrently, or every
// resource the viewer may see when codes is empty. A superseded load is not an
// error; the first failure cancels the rest and is returned.
func (s *Service) LoadAll(ctx context.Context, viewer ViewerContext, codes ...string) ([]*View, error) {
	if len(codes) == 0 {
		for _, res := range s.Resources(ctx, viewer) {
			codes = append(codes, res.Code)
		}
	}
	views := make([]*View, len(codes))
	for i, code := range codes {
		view, err := s.Open(ctx, viewer, code)
		if err != nil {
			return nil, err
		}
		views[i] = view
	}
	group, groupCtx := errgroup.WithContext(ctx)
	for _, view := range views {
		group.Go(func() error {
			if err := view.Load(groupCtx); err != nil && !errors.Is(err, ErrStaleResponse) {
				return err
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return views, err
	}
	return views, nil
}

// SavePreset persists a preset for the viewer.
func (s *Service) SavePreset(ctx context.Context, viewer ViewerContext, code string, preset Preset) error {
	if viewer.UserID == "" {
		return errors.New("dataview: viewer context missing user id")
	}
	if _, err := s.resource(ctx, viewer, code); err != nil {
		return err
	}
	if err := s.opts.Presets.SavePreset(ctx, viewer, code, preset); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dataview.preset.save", map[string]any{
		"resource": code,
		"viewer":   viewer.UserID,
		"preset":   preset.Name,
	})
	return nil
}

// Presets lists the viewer's saved presets for resource.
func (s *Service) Presets(ctx context.Context, viewer ViewerContext, code string) ([]Preset, error) {
	if _, err := s.resource(ctx, viewer, code); err != nil {
		return nil, err
	}
	return s.opts.Presets.Presets(ctx, viewer, code)
}

func (s *Service) resource(ctx context.Context, viewer ViewerContext, code string) (ResourceConfig, error) {
	resource, ok := s.opts.Registry.Resource(code)
	if !ok {
		return ResourceConfig{}, fmt.Errorf("%w: %s", ErrUnknownResource, code)
	}
	if !s.opts.Authorizer.CanView(ctx, viewer, resource) {
		return ResourceConfig{}, fmt.Errorf("%w: %s", ErrForbidden, code)
	}
	return resource, nil
}

func (s *Service) backend(ctx context.Context, viewer ViewerContext) (Backend, error) {
	if s.opts.BackendFor != nil {
		backend, err := s.opts.BackendFor(ctx, viewer)
		if err != nil {
			return nil, fmt.Errorf("dataview: resolve backend: %w", err)
		}
		if backend != nil {
			return backend, nil
		}
	}
	if s.opts.Backend == nil {
		return nil, errMissingBackend
	}
	return s.opts.Backend, nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func viewKey(viewer ViewerContext, code string) string {
	return viewer.UserID + "::" + code
}

func isViewStateError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr) || errors.Is(err, ErrStaleResponse)
}

// RoleAuthorizer allows a resource when it lists no roles or the viewer holds one of them.
type RoleAuthorizer struct{}

// CanView implements Authorizer.
func (RoleAuthorizer) CanView(_ context.Context, viewer ViewerContext, resource ResourceConfig) bool {
	if len(resource.Roles) == 0 {
		return true
	}
	for _, want := range resource.Roles {
		for _, have := range viewer.Roles {
			if want == have {
				return true
			}
		}
	}
	return false
}
