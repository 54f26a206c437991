package dataview

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestService(backend Backend) *Service {
	return NewService(Options{Backend: backend})
}

func TestServiceResourcesFilteredByRole(t *testing.T) {
	service := newTestService(&fakeBackend{})
	seller := ViewerContext{UserID: "s1", Roles: []string{"seller"}}
	var codes []string
	for _, res := range service.Resources(context.Background(), seller) {
		codes = append(codes, res.Code)
	}
	if len(codes) != 2 || codes[0] != "orders" || codes[1] != "products" {
		t.Fatalf("unexpected seller resources %v", codes)
	}
}

func TestServiceOpenRejectsForbiddenAndUnknown(t *testing.T) {
	service := newTestService(&fakeBackend{})
	seller := ViewerContext{UserID: "s1", Roles: []string{"seller"}}
	if _, err := service.Open(context.Background(), seller, "users"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := service.Open(context.Background(), seller, "nope"); !errors.Is(err, ErrUnknownResource) {
		t.Fatalf("expected ErrUnknownResource, got %v", err)
	}
}

func TestServiceOpenReusesViewPerViewer(t *testing.T) {
	service := newTestService(&fakeBackend{records: sampleProducts()})
	admin := ViewerContext{UserID: "a1", Roles: []string{"admin"}}
	other := ViewerContext{UserID: "a2", Roles: []string{"admin"}}
	v1, err := service.Open(context.Background(), admin, "products")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	v2, _ := service.Open(context.Background(), admin, "products")
	v3, _ := service.Open(context.Background(), other, "products")
	if v1 != v2 {
		t.Fatalf("expected same view for the same viewer")
	}
	if v1 == v3 {
		t.Fatalf("expected separate views per viewer")
	}
	service.Close(admin, "products")
	v4, _ := service.Open(context.Background(), admin, "products")
	if v4 == v1 {
		t.Fatalf("expected a fresh view after close")
	}
}

func TestServiceSnapshotLoadsOnce(t *testing.T) {
	backend := &fakeBackend{records: sampleProducts()}
	service := newTestService(backend)
	admin := ViewerContext{UserID: "a1", Roles: []string{"admin"}}
	snap, err := service.Snapshot(context.Background(), admin, "products")
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if snap.Status != StatusReady || len(snap.Records) != 3 {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
	if _, err := service.Snapshot(context.Background(), admin, "products"); err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if backend.lists != 1 {
		t.Fatalf("expected one list call, got %d", backend.lists)
	}
}

func TestServiceSnapshotReportsFetchFailure(t *testing.T) {
	service := newTestService(&fakeBackend{listErr: errors.New("offline")})
	admin := ViewerContext{UserID: "a1", Roles: []string{"admin"}}
	snap, err := service.Snapshot(context.Background(), admin, "products")
	if err != nil {
		t.Fatalf("fetch failures should surface in the snapshot, got %v", err)
	}
	if snap.Status != StatusError || !snap.Retryable {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
}

func TestServiceAppliesDefaultPreset(t *testing.T) {
	service := newTestService(&fakeBackend{records: sampleProducts()})
	admin := ViewerContext{UserID: "a1", Roles: []string{"admin"}}
	err := service.SavePreset(context.Background(), admin, "products", Preset{
		Name:    "inactive",
		Default: true,
		Filter:  FilterState{Equality: map[string]any{"status": "inactive"}},
	})
	if err != nil {
		t.Fatalf("SavePreset returned error: %v", err)
	}
	snap, err := service.Snapshot(context.Background(), admin, "products")
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	if len(snap.Records) != 1 || snap.Records[0]["id"] != "2" {
		t.Fatalf("default preset not applied: %#v", snap.Records)
	}
}

func TestServiceBackendResolverCarriesCredentials(t *testing.T) {
	var seen string
	backend := &fakeBackend{records: sampleProducts()}
	service := NewService(Options{
		BackendFor: func(_ context.Context, viewer ViewerContext) (Backend, error) {
			seen = viewer.UserID
			return backend, nil
		},
	})
	admin := ViewerContext{UserID: "a9", Roles: []string{"admin"}}
	if _, err := service.Record(context.Background(), admin, "products", "3"); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if seen != "a9" {
		t.Fatalf("expected resolver to receive viewer, got %q", seen)
	}
}

func TestServiceRecordWrapsFetchError(t *testing.T) {
	service := newTestService(&fakeBackend{})
	admin := ViewerContext{UserID: "a1", Roles: []string{"admin"}}
	_, err := service.Record(context.Background(), admin, "products", "missing")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestServiceWithoutBackend(t *testing.T) {
	service := NewService(Options{})
	admin := ViewerContext{UserID: "a1", Roles: []string{"admin"}}
	if _, err := service.Open(context.Background(), admin, "products"); !errors.Is(err, errMissingBackend) {
		t.Fatalf("expected missing backend error, got %v", err)
	}
}

func TestRoleAuthorizerAllowsOpenResources(t *testing.T) {
	if !(RoleAuthorizer{}).CanView(context.Background(), ViewerContext{}, ResourceConfig{Code: "public"}) {
		t.Fatalf("resources without roles should be visible")
	}
}

func couponManifest(state string) []byte {
	return []byte(`resources:
  - code: coupons
    endpoint: /coupons
    actions:
      - name: set_state
        method: PATCH
        fields: [state]
    patch_schema:
      type: object
      properties:
        state:
          type: string
          enum: [` + state + `]
`)
}

func TestServiceInvalidateResourcesAppliesReloadedManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources.yaml")
	if err := os.WriteFile(path, couponManifest("a"), 0o600); err != nil {
		t.Fatal(err)
	}
	reg := NewEmptyRegistry()
	if _, err := reg.LoadManifestFile(path); err != nil {
		t.Fatalf("LoadManifestFile returned error: %v", err)
	}
	backend := &fakeBackend{records: []Record{{"id": "c1", "state": "a"}}}
	service := NewService(Options{Registry: reg, Backend: backend})
	viewer := ViewerContext{UserID: "a1"}
	ctx := context.Background()

	setState := func() error {
		view, err := service.Open(ctx, viewer, "coupons")
		if err != nil {
			return err
		}
		if err := view.Load(ctx); err != nil {
			return err
		}
		res, _ := reg.Resource("coupons")
		action, _ := res.Action("set_state")
		return view.PerformRowAction(ctx, "c1", action.WithValues(map[string]any{"state": "b"}))
	}
	if err := setState(); err == nil {
		t.Fatalf("expected the first schema to reject state b")
	}
	old, _ := service.Open(ctx, viewer, "coupons")

	if err := os.WriteFile(path, couponManifest("b"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.LoadManifestFile(path); err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	service.InvalidateResources("coupons")

	if err := old.Load(ctx); !errors.Is(err, ErrViewClosed) {
		t.Fatalf("expected the stale view to be closed, got %v", err)
	}
	if err := setState(); err != nil {
		t.Fatalf("reloaded schema should accept state b: %v", err)
	}
}

func TestServiceWatchManifestInvalidatesViews(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources.yaml")
	if err := os.WriteFile(path, couponManifest("a"), 0o600); err != nil {
		t.Fatal(err)
	}
	reg := NewEmptyRegistry()
	if _, err := reg.LoadManifestFile(path); err != nil {
		t.Fatalf("LoadManifestFile returned error: %v", err)
	}
	service := NewService(Options{Registry: reg, Backend: &fakeBackend{}})
	viewer := ViewerContext{UserID: "a1"}
	before, err := service.Open(context.Background(), viewer, "coupons")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded := make(chan struct{}, 4)
	go func() {
		_ = service.WatchManifest(ctx, path, func(_ *ManifestDocument, err error) {
			if err == nil {
				reloaded <- struct{}{}
			}
		})
	}()

	deadline := time.After(3 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-reloaded:
			after, err := service.Open(context.Background(), viewer, "coupons")
			if err != nil {
				t.Fatalf("Open returned error: %v", err)
			}
			if after == before {
				t.Fatalf("expected a fresh view after the manifest changed")
			}
			return
		case <-tick.C:
			_ = os.WriteFile(path, couponManifest("b"), 0o600)
		case <-deadline:
			t.Fatalf("manifest was not reloaded")
		}
	}
}

func TestServiceLoadAll(t *testing.T) {
	backend := &fakeBackend{records: sampleProducts()}
	service := newTestService(backend)
	seller := ViewerContext{UserID: "s1", Roles: []string{"seller"}}

	views, err := service.LoadAll(context.Background(), seller)
	if err != nil {
		t.Fatalf("LoadAll returned error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected one view per authorized resource, got %d", len(views))
	}
	for _, view := range views {
		if got := len(view.Records()); got != 3 {
			t.Fatalf("expected loaded view, got %d records", got)
		}
	}
	if _, err := service.LoadAll(context.Background(), seller, "users"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	backend.setListErr(errors.New("down"))
	service.Close(seller, "orders")
	if _, err := service.LoadAll(context.Background(), seller, "orders"); err == nil {
		t.Fatalf("expected load failure to be returned")
	}
}

func TestServiceViewsAddressNotificationsToViewer(t *testing.T) {
	notifier := &recordingNotifier{}
	service := NewService(Options{Backend: &fakeBackend{records: sampleProducts()}, Notifier: notifier})
	admin := ViewerContext{UserID: "a1", Roles: []string{"admin"}}
	view, err := service.Open(context.Background(), admin, "products")
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := view.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := view.PerformRowAction(context.Background(), "1", SetField("status", "inactive")); err != nil {
		t.Fatalf("PerformRowAction returned error: %v", err)
	}
	note, ok := notifier.last()
	if !ok || note.Viewer != "a1" {
		t.Fatalf("expected notification addressed to a1, got %#v", note)
	}
}
