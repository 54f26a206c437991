package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dataview "github.com/goliatone/go-dataview/components/dataview"
	"github.com/goliatone/go-dataview/components/dataview/commands"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(_ context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

type memoryBackend struct {
	records []dataview.Record
	failAll bool
}

func (m *memoryBackend) List(context.Context, dataview.ResourceConfig) ([]dataview.Record, error) {
	out := make([]dataview.Record, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *memoryBackend) Get(_ context.Context, _ dataview.ResourceConfig, id string) (dataview.Record, error) {
	for _, r := range m.records {
		if r["id"] == id {
			return r, nil
		}
	}
	return nil, errors.New("missing")
}

func (m *memoryBackend) Execute(context.Context, dataview.ResourceConfig, string, dataview.RowAction) (dataview.ActionResult, error) {
	if m.failAll {
		return dataview.ActionResult{}, errors.New("backend unavailable")
	}
	return dataview.ActionResult{Success: true}, nil
}

func newMux(backend *memoryBackend) *http.ServeMux {
	service := dataview.NewService(dataview.Options{Backend: backend})
	handlers := &Handlers{API: NewCommandExecutor(service, nil)}
	mux := http.NewServeMux()
	handlers.Mount(mux, "/admin/data")
	return mux
}

func do(mux http.Handler, method, path, body string, roles string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("X-User-Roles", roles)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func productsBackend() *memoryBackend {
	return &memoryBackend{records: []dataview.Record{
		{"id": "1", "name": "Alpha", "status": "active"},
		{"id": "2", "name": "Beta", "status": "inactive"},
	}}
}

func TestSnapshotEndpoint(t *testing.T) {
	mux := newMux(productsBackend())
	rec := do(mux, http.MethodGet, "/admin/data/products", "", "admin")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var snap dataview.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Status != dataview.StatusReady || len(snap.Records) != 2 {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
}

func TestSearchThenSnapshot(t *testing.T) {
	mux := newMux(productsBackend())
	do(mux, http.MethodGet, "/admin/data/products", "", "admin")
	if rec := do(mux, http.MethodPost, "/admin/data/products/search", `{"text":"bet"}`, "admin"); rec.Code != http.StatusOK {
		t.Fatalf("search returned %d: %s", rec.Code, rec.Body.String())
	}
	rec := do(mux, http.MethodGet, "/admin/data/products", "", "admin")
	var snap dataview.Snapshot
	_ = json.Unmarshal(rec.Body.Bytes(), &snap)
	if len(snap.Records) != 1 || snap.Records[0]["id"] != "2" {
		t.Fatalf("unexpected records %#v", snap.Records)
	}
}

func TestRowActionEndpoint(t *testing.T) {
	mux := newMux(productsBackend())
	do(mux, http.MethodGet, "/admin/data/products", "", "admin")
	rec := do(mux, http.MethodPost, "/admin/data/products/records/2/actions/set_status", `{"status":"active"}`, "admin")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = do(mux, http.MethodPost, "/admin/data/products/records/9/actions/set_status", `{"status":"active"}`, "admin")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown record, got %d", rec.Code)
	}
}

func TestRowActionBackendFailure(t *testing.T) {
	backend := productsBackend()
	backend.failAll = true
	mux := newMux(backend)
	do(mux, http.MethodGet, "/admin/data/products", "", "admin")
	rec := do(mux, http.MethodDelete, "/admin/data/products/records/1", "", "admin")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "backend unavailable") {
		t.Fatalf("expected error message, got %s", rec.Body.String())
	}
}

func TestForbiddenResource(t *testing.T) {
	mux := newMux(productsBackend())
	rec := do(mux, http.MethodGet, "/admin/data/users", "", "seller")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	rec = do(mux, http.MethodGet, "/admin/data/widgets", "", "admin")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleFilterUsesCommander(t *testing.T) {
	filter := &stubCommander[commands.FilterInput]{}
	handlers := &Handlers{API: &CommandExecutor{FilterCmd: filter}}
	req := httptest.NewRequest(http.MethodPost, "/orders/filter", strings.NewReader(`{"field":"status","value":"shipped"}`))
	req.Header.Set("X-User-ID", "u7")
	req.Header.Set("X-User-Roles", "admin, seller")
	rec := httptest.NewRecorder()
	handlers.HandleFilter(rec, req, "orders")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if filter.last.Resource != "orders" || filter.last.Field != "status" || filter.last.Value != "shipped" {
		t.Fatalf("unexpected input %#v", filter.last)
	}
	if len(filter.last.Viewer.Roles) != 2 || filter.last.Viewer.UserID != "u7" {
		t.Fatalf("viewer not propagated: %#v", filter.last.Viewer)
	}
}

func TestHandleSearchRejectsBadJSON(t *testing.T) {
	handlers := &Handlers{API: &CommandExecutor{SearchCmd: &stubCommander[commands.SearchInput]{}}}
	rec := httptest.NewRecorder()
	handlers.HandleSearch(rec, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("{")), "products")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		dataview.ErrRecordBusy: http.StatusConflict,
		dataview.ErrForbidden:  http.StatusForbidden,
		errNotConfigured:       http.StatusNotImplemented,
		errors.New("plain"):    http.StatusInternalServerError,
		&dataview.FetchError{Resource: "x", Err: errors.New("boom")}: http.StatusBadGateway,
	}
	for err, want := range cases {
		if got := StatusFor(err); got != want {
			t.Fatalf("StatusFor(%v) = %d, want %d", err, got, want)
		}
	}
}

func TestRowActionRejectsUndeclaredField(t *testing.T) {
	mux := newMux(productsBackend())
	do(mux, http.MethodGet, "/admin/data/products", "", "admin")
	rec := do(mux, http.MethodPost, "/admin/data/products/records/2/actions/set_status", `{"status":"active","price":0}`, "admin")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNotificationStreamIsScopedToViewer(t *testing.T) {
	hub := dataview.NewBroadcastNotifier()
	service := dataview.NewService(dataview.Options{Backend: productsBackend(), Notifier: hub})
	handlers := &Handlers{API: NewCommandExecutor(service, nil), Notifications: hub}
	mux := http.NewServeMux()
	handlers.Mount(mux, "/admin/data")
	server := httptest.NewServer(mux)
	defer server.Close()

	others, cancel := hub.Subscribe("u2")
	defer cancel()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/admin/data/notifications/stream", nil)
	req.Header.Set("X-User-ID", "u1")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	do(mux, http.MethodGet, "/admin/data/products", "", "admin")
	if rec := do(mux, http.MethodPost, "/admin/data/products/records/2/actions/set_status", `{"status":"active"}`, "admin"); rec.Code != http.StatusOK {
		t.Fatalf("row action returned %d: %s", rec.Code, rec.Body.String())
	}

	lines := make(chan string, 8)
	go func() {
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed before the notification")
			}
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var note dataview.Notification
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &note); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if note.Viewer != "u1" || note.RecordID != "2" {
				t.Fatalf("unexpected notification %#v", note)
			}
			select {
			case got := <-others:
				t.Fatalf("another viewer received %#v", got)
			default:
			}
			return
		case <-deadline:
			t.Fatalf("notification not streamed")
		}
	}
}
