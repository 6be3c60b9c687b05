package v1

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/vgetd/vgetd/internal/data"
	"github.com/vgetd/vgetd/internal/engine"
	"github.com/vgetd/vgetd/internal/service"
)

const defaultStreamIdle = 30 * time.Second

// DownloadHandler adapts the download service to HTTP. Pure adaptation;
// no business logic lives here.
type DownloadHandler struct {
	l          *slog.Logger
	svc        service.Downloads
	streamIdle time.Duration
}

func NewDownloadHandler(l *slog.Logger, svc service.Downloads) *DownloadHandler {
	return &DownloadHandler{l: l, svc: svc, streamIdle: defaultStreamIdle}
}

// WithStreamIdle overrides the stream heartbeat interval. Used by tests.
func (h *DownloadHandler) WithStreamIdle(d time.Duration) *DownloadHandler {
	h.streamIdle = d
	return h
}

// StartDownload handles POST /api/download. The validated per-URL request
// list arrives via middleware; one job id is minted per URL and returned
// immediately.
func (h *DownloadHandler) StartDownload(w http.ResponseWriter, r *http.Request) {
	v := r.Context().Value(ctxKeyDownload{})
	reqs, ok := v.([]data.DownloadRequest)
	if !ok || len(reqs) == 0 {
		respondError(w, http.StatusInternalServerError, ErrRequestCtx)
		return
	}

	ids := h.svc.Start(r.Context(), reqs)

	respond(w, http.StatusOK, map[string]any{
		"download_ids": ids,
		"download_id":  ids[0],
		"message":      fmt.Sprintf("Started %d download(s)", len(ids)),
	})
}

// GetProgress handles GET /api/progress/{id}. Unknown ids get the unknown
// sentinel, not an HTTP error.
func (h *DownloadHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	respond(w, http.StatusOK, h.svc.Snapshot(r.Context(), id))
}

// GetInfo handles POST /api/info.
func (h *DownloadHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	v := r.Context().Value(ctxKeyInfo{})
	url, ok := v.(string)
	if !ok || url == "" {
		respondError(w, http.StatusInternalServerError, ErrRequestCtx)
		return
	}

	md, err := h.svc.Info(r.Context(), url)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	respond(w, http.StatusOK, infoResponse(md))
}

// GetQueue handles GET /api/queue.
func (h *DownloadHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	entries := h.svc.Queue(r.Context())
	respond(w, http.StatusOK, map[string]any{
		"queue": entries,
		"count": len(entries),
	})
}

func infoResponse(md *engine.Metadata) map[string]any {
	if md.IsPlaylist {
		return map[string]any{
			"is_playlist":    true,
			"playlist_title": md.Title,
			"playlist_count": len(md.Entries),
			"uploader":       md.Uploader,
			"thumbnail":      md.Thumbnail,
			"description":    truncate(md.Description),
		}
	}
	return map[string]any{
		"is_playlist": false,
		"title":       md.Title,
		"uploader":    md.Uploader,
		"duration":    md.Duration,
		"thumbnail":   md.Thumbnail,
		"views":       md.Views,
		"formats":     md.Formats,
		"description": truncate(md.Description),
		"upload_date": md.UploadDate,
		"channel":     md.Channel,
	}
}

// truncate caps a description at 200 characters and marks it elided.
// Empty descriptions stay empty.
func truncate(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	if len(runes) > 200 {
		runes = runes[:200]
	}
	return string(runes) + "..."
}
