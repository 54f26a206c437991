package dataview

import (
	"context"
	"errors"
	"sync"
)

type fakeBackend struct {
	mu       sync.Mutex
	records  []Record
	listErr  error
	listGate chan struct{}
	execGate chan struct{}
	execErr  error
	result   *ActionResult
	calls    []RowAction
	lists    int
}

func (f *fakeBackend) List(ctx context.Context, _ ResourceConfig) ([]Record, error) {
	f.mu.Lock()
	f.lists++
	gate := f.listGate
	records := cloneRecords(f.records)
	err := f.listErr
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return records, err
}

func (f *fakeBackend) Get(_ context.Context, res ResourceConfig, id string) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID(res.IDField) == id {
			return r.Clone(), nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeBackend) Execute(ctx context.Context, _ ResourceConfig, _ string, action RowAction) (ActionResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, action)
	gate := f.execGate
	err := f.execErr
	result := f.result
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ActionResult{}, ctx.Err()
		}
	}
	if err != nil {
		return ActionResult{}, err
	}
	if result != nil {
		return *result, nil
	}
	return ActionResult{Success: true}, nil
}

func (f *fakeBackend) setListErr(err error) {
	f.mu.Lock()
	f.listErr = err
	f.mu.Unlock()
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (n *recordingNotifier) Notify(_ context.Context, note Notification) error {
	n.mu.Lock()
	n.notes = append(n.notes, note)
	n.mu.Unlock()
	return nil
}

func (n *recordingNotifier) last() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notes) == 0 {
		return Notification{}, false
	}
	return n.notes[len(n.notes)-1], true
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (t *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	t.mu.Lock()
	t.events = append(t.events, event)
	t.mu.Unlock()
}

func (t *recordingTelemetry) has(event string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.events {
		if e == event {
			return true
		}
	}
	return false
}

func productsResource() ResourceConfig {
	res, _ := NewRegistry().Resource("products")
	return res
}

func sampleProducts() []Record {
	return []Record{
		{"id": "1", "name": "Alpha", "description": "first", "status": "active", "price": 30.0},
		{"id": "2", "name": "Beta", "description": "second", "status": "inactive", "price": 10.0},
		{"id": "3", "name": "Gamma", "description": "alpha blend", "status": "active", "price": 20.0},
	}
}

func newLoadedView(t interface{ Fatalf(string, ...any) }, backend *fakeBackend, notifier Notifier) *View {
	view := NewView(ViewOptions{
		Resource:  productsResource(),
		Source:    backend,
		Executor:  backend,
		Notifier:  notifier,
		Validator: NewJSONSchemaValidator(),
	})
	if err := view.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return view
}

func ids(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID("")
	}
	return out
}
