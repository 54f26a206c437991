package dataview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// BroadcastNotifier routes notifications to live transports (websocket, SSE).
// A notification addressed to a viewer reaches only that viewer's subscriptions;
// an unaddressed one reaches every subscription.
type BroadcastNotifier struct {
	buffer int

	mu   sync.RWMutex
	subs map[*subscription]struct{}
}

type subscription struct {
	viewer string
	notes  chan Notification
}

func (s *subscription) accepts(note Notification) bool {
	return note.Viewer == "" || note.Viewer == s.viewer
}

// NewBroadcastNotifier creates an empty notifier.
func NewBroadcastNotifier() *BroadcastNotifier {
	return &BroadcastNotifier{buffer: 16, subs: map[*subscription]struct{}{}}
}

// Notify implements Notifier. A subscriber whose buffer is full misses the
// notification rather than stalling the view that produced it.
func (h *BroadcastNotifier) Notify(_ context.Context, note Notification) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if !sub.accepts(note) {
			continue
		}
		select {
		case sub.notes <- note:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscription for viewer. The returned func is idempotent
// and closes the channel.
func (h *BroadcastNotifier) Subscribe(viewer string) (<-chan Notification, func()) {
	sub := &subscription{viewer: viewer, notes: make(chan Notification, h.buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub.notes, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[sub]; ok {
			delete(h.subs, sub)
			close(sub.notes)
		}
	}
}

func (h *BroadcastNotifier) subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Stream forwards notes to write until ctx ends, the subscription is cancelled,
// or write fails.
func Stream(ctx context.Context, notes <-chan Notification, write func(Notification) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case note, ok := <-notes:
			if !ok {
				return nil
			}
			if err := write(note); err != nil {
				return err
			}
		}
	}
}

// RequestViewer resolves the user id a notification stream belongs to.
type RequestViewer func(*http.Request) string

var notificationUpgrader = websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024}

// WebSocketHandler streams the requesting viewer's notifications as JSON frames.
// Requests without a viewer are refused.
func (h *BroadcastNotifier) WebSocketHandler(viewerOf RequestViewer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer := resolveRequestViewer(viewerOf, r)
		if viewer == "" {
			http.Error(w, "viewer required", http.StatusUnauthorized)
			return
		}
		conn, err := notificationUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		notes, cancel := h.Subscribe(viewer)
		defer cancel()
		_ = Stream(r.Context(), notes, func(note Notification) error {
			return conn.WriteJSON(note)
		})
	})
}

// SSEHandler streams the requesting viewer's notifications as Server-Sent Events.
func (h *BroadcastNotifier) SSEHandler(viewerOf RequestViewer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer := resolveRequestViewer(viewerOf, r)
		if viewer == "" {
			http.Error(w, "viewer required", http.StatusUnauthorized)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		notes, cancel := h.Subscribe(viewer)
		defer cancel()
		flusher.Flush()

		_ = Stream(r.Context(), notes, func(note Notification) error {
			data, err := json.Marshal(note)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "event: notification\ndata: %s\n\n", data); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		})
	})
}

func resolveRequestViewer(viewerOf RequestViewer, r *http.Request) string {
	if viewerOf == nil {
		return ""
	}
	return viewerOf(r)
}
