package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/vgetd/vgetd/internal/data"
	"github.com/vgetd/vgetd/internal/metrics"
)

// StreamProgress handles GET /api/progress/stream/{id} as Server-Sent
// Events. The subscription is released on every exit path: terminal
// snapshot, client disconnect, or replacement by a newer subscriber.
func (h *DownloadHandler) StreamProgress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, ErrNoFlush)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := h.svc.Subscribe(id)
	defer cancel()
	metrics.StreamSubscribers.Inc()
	defer metrics.StreamSubscribers.Dec()

	// A late subscriber is not blind to already-elapsed progress: replay
	// the stored snapshot first, and end right away if it was terminal.
	if snap := h.svc.Snapshot(r.Context(), id); snap.Status != data.StatusUnknown {
		writeSSE(w, snap)
		flusher.Flush()
		if snap.Status.Terminal() {
			return
		}
	}

	idle := time.NewTimer(h.streamIdle)
	defer idle.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case snap, open := <-ch:
			if !open {
				// A newer subscriber took over this id.
				return
			}
			writeSSE(w, snap)
			flusher.Flush()
			if snap.Status.Terminal() {
				return
			}
			resetTimer(idle, h.streamIdle)
		case <-idle.C:
			// Keep the connection alive; only a terminal snapshot ends
			// the stream.
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
			idle.Reset(h.streamIdle)
		}
	}
}

// StreamProgressWS handles GET /api/progress/ws/{id}: the same event feed
// over a websocket, one JSON message per snapshot.
func (h *DownloadHandler) StreamProgressWS(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		h.l.Error("websocket accept", "id", id, "err", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusInternalError, "stream aborted") }()

	ctx := r.Context()
	ch, cancel := h.svc.Subscribe(id)
	defer cancel()
	metrics.StreamSubscribers.Inc()
	defer metrics.StreamSubscribers.Dec()

	if snap := h.svc.Snapshot(ctx, id); snap.Status != data.StatusUnknown {
		if err := wsjson.Write(ctx, conn, snap); err != nil {
			return
		}
		if snap.Status.Terminal() {
			_ = conn.Close(websocket.StatusNormalClosure, "done")
			return
		}
	}

	idle := time.NewTimer(h.streamIdle)
	defer idle.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, open := <-ch:
			if !open {
				_ = conn.Close(websocket.StatusNormalClosure, "superseded")
				return
			}
			if err := wsjson.Write(ctx, conn, snap); err != nil {
				return
			}
			if snap.Status.Terminal() {
				_ = conn.Close(websocket.StatusNormalClosure, "done")
				return
			}
			resetTimer(idle, h.streamIdle)
		case <-idle.C:
			if err := conn.Ping(ctx); err != nil {
				return
			}
			idle.Reset(h.streamIdle)
		}
	}
}

func writeSSE(w http.ResponseWriter, snap data.Snapshot) {
	b, err := json.Marshal(snap)
	if err != nil {
		markErr(w, err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", b)
}

// resetTimer drains and rearms an idle timer after an event delivery.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
