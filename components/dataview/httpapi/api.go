package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	dataview "github.com/goliatone/go-dataview/components/dataview"
	"github.com/goliatone/go-dataview/components/dataview/commands"
	"github.com/goliatone/go-dataview/components/dataview/queries"
)

// ViewerFunc extracts the viewer from an incoming request.
type ViewerFunc func(*http.Request) dataview.ViewerContext

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	API    Executor
	Viewer ViewerFunc
	// Notifications, when set, is served under {base}/notifications/ws and
	// {base}/notifications/stream, scoped to the requesting viewer.
	Notifications *dataview.BroadcastNotifier
}

// Mount registers the handlers on mux under base (for example "/admin/data").
func (h *Handlers) Mount(mux *http.ServeMux, base string) {
	base = "/" + strings.Trim(base, "/")
	if base == "/" {
		base = ""
	}
	mux.HandleFunc("GET "+base+"/{resource}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSnapshot(w, r, r.PathValue("resource"))
	})
	mux.HandleFunc("POST "+base+"/{resource}/load", func(w http.ResponseWriter, r *http.Request) {
		h.HandleLoad(w, r, r.PathValue("resource"))
	})
	mux.HandleFunc("POST "+base+"/{resource}/search", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSearch(w, r, r.PathValue("resource"))
	})
	mux.HandleFunc("POST "+base+"/{resource}/filter", func(w http.ResponseWriter, r *http.Request) {
		h.HandleFilter(w, r, r.PathValue("resource"))
	})
	mux.HandleFunc("POST "+base+"/{resource}/sort", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSort(w, r, r.PathValue("resource"))
	})
	mux.HandleFunc("POST "+base+"/{resource}/reset", func(w http.ResponseWriter, r *http.Request) {
		h.HandleReset(w, r, r.PathValue("resource"))
	})
	mux.HandleFunc("POST "+base+"/{resource}/presets", func(w http.ResponseWriter, r *http.Request) {
		h.HandleSavePreset(w, r, r.PathValue("resource"))
	})
	mux.HandleFunc("GET "+base+"/{resource}/records/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRecord(w, r, r.PathValue("resource"), r.PathValue("id"))
	})
	mux.HandleFunc("POST "+base+"/{resource}/records/{id}/actions/{action}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRowAction(w, r, r.PathValue("resource"), r.PathValue("id"), r.PathValue("action"))
	})
	mux.HandleFunc("DELETE "+base+"/{resource}/records/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleDelete(w, r, r.PathValue("resource"), r.PathValue("id"))
	})
	if h.Notifications != nil {
		viewerID := func(r *http.Request) string { return h.viewer(r).UserID }
		mux.Handle("GET "+base+"/notifications/ws", h.Notifications.WebSocketHandler(viewerID))
		mux.Handle("GET "+base+"/notifications/stream", h.Notifications.SSEHandler(viewerID))
	}
}

// HandleSnapshot returns the view state. The optional page query parameter selects a page first.
func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request, resource string) {
	in := h.viewInput(r, resource)
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := h.API.Page(r.Context(), commands.PageInput{ViewInput: in, Page: page}); err != nil {
			writeError(w, StatusFor(err), err)
			return
		}
	}
	snap, err := h.API.Snapshot(r.Context(), queries.SnapshotInput{Viewer: in.Viewer, Resource: resource})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleRecord returns a single record from the detail endpoint.
func (h *Handlers) HandleRecord(w http.ResponseWriter, r *http.Request, resource, id string) {
	record, err := h.API.Record(r.Context(), queries.RecordInput{Viewer: h.viewer(r), Resource: resource, ID: id})
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// HandleLoad refetches the collection (the retry affordance).
func (h *Handlers) HandleLoad(w http.ResponseWriter, r *http.Request, resource string) {
	if err := h.API.Load(r.Context(), h.viewInput(r, resource)); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request, resource string) {
	var payload commands.SearchInput
	if !decode(w, r, &payload) {
		return
	}
	payload.ViewInput = h.viewInput(r, resource)
	h.respond(w, h.API.Search(r.Context(), payload), http.StatusOK)
}

func (h *Handlers) HandleFilter(w http.ResponseWriter, r *http.Request, resource string) {
	var payload commands.FilterInput
	if !decode(w, r, &payload) {
		return
	}
	payload.ViewInput = h.viewInput(r, resource)
	h.respond(w, h.API.Filter(r.Context(), payload), http.StatusOK)
}

func (h *Handlers) HandleSort(w http.ResponseWriter, r *http.Request, resource string) {
	var payload commands.SortInput
	if !decode(w, r, &payload) {
		return
	}
	payload.ViewInput = h.viewInput(r, resource)
	h.respond(w, h.API.Sort(r.Context(), payload), http.StatusOK)
}

func (h *Handlers) HandleReset(w http.ResponseWriter, r *http.Request, resource string) {
	h.respond(w, h.API.Reset(r.Context(), h.viewInput(r, resource)), http.StatusOK)
}

func (h *Handlers) HandleSavePreset(w http.ResponseWriter, r *http.Request, resource string) {
	var payload commands.SavePresetInput
	if !decode(w, r, &payload) {
		return
	}
	payload.ViewInput = h.viewInput(r, resource)
	h.respond(w, h.API.SavePreset(r.Context(), payload), http.StatusCreated)
}

// HandleRowAction runs a configured action. The optional JSON body carries field values.
func (h *Handlers) HandleRowAction(w http.ResponseWriter, r *http.Request, resource, id, action string) {
	var values map[string]any
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	input := commands.RowActionInput{
		ViewInput: h.viewInput(r, resource),
		RecordID:  id,
		Action:    action,
		Values:    values,
	}
	h.respond(w, h.API.RowAction(r.Context(), input), http.StatusOK)
}

func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request, resource, id string) {
	input := commands.DeleteRecordInput{ViewInput: h.viewInput(r, resource), RecordID: id}
	if err := h.API.Delete(r.Context(), input); err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) respond(w http.ResponseWriter, err error, status int) {
	if err != nil {
		writeError(w, StatusFor(err), err)
		return
	}
	w.WriteHeader(status)
}

func (h *Handlers) viewInput(r *http.Request, resource string) commands.ViewInput {
	return commands.ViewInput{Viewer: h.viewer(r), Resource: resource}
}

func (h *Handlers) viewer(r *http.Request) dataview.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	return HeaderViewer(r)
}

// HeaderViewer reads the viewer from X-User-ID, X-User-Roles and Accept-Language headers.
func HeaderViewer(r *http.Request) dataview.ViewerContext {
	viewer := dataview.ViewerContext{UserID: r.Header.Get("X-User-ID")}
	for _, role := range strings.Split(r.Header.Get("X-User-Roles"), ",") {
		if role = strings.TrimSpace(role); role != "" {
			viewer.Roles = append(viewer.Roles, role)
		}
	}
	if lang := r.Header.Get("Accept-Language"); lang != "" {
		viewer.Locale = strings.ToLower(strings.TrimSpace(strings.Split(strings.Split(lang, ",")[0], ";")[0]))
	}
	return viewer
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
