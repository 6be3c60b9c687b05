package v1

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/vgetd/vgetd/internal/data"
)

// context keys
type ctxKeyDownload struct{}
type ctxKeyInfo struct{}

// rwLogger captures status, byte count and handler errors for the access
// log middleware.
type rwLogger struct {
	http.ResponseWriter
	status int
	bytes  int
	err    error
}

func (w *rwLogger) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *rwLogger) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *rwLogger) SetErr(err error) { w.err = err }

// Flush forwards to the wrapped writer so SSE streaming works through the
// access log middleware.
func (w *rwLogger) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

type errorSetter interface {
	SetErr(error)
}

func markErr(w http.ResponseWriter, err error) {
	if es, ok := w.(errorSetter); ok {
		es.SetErr(err)
	}
}

// downloadBody is the wire shape of POST /api/download. A single url and
// a urls batch are both accepted; url is folded into urls.
type downloadBody struct {
	URLs        []string `json:"urls"`
	URL         string   `json:"url"`
	Quality     string   `json:"quality"`
	Mode        string   `json:"mode"`
	AudioFormat string   `json:"audio_format"`
	VideoFormat string   `json:"video_format"`
	Platform    string   `json:"platform"`
	Browser     string   `json:"browser"`
	IsPlaylist  bool     `json:"is_playlist"`
}

type infoBody struct {
	URL string `json:"url"`
}

// MiddlewareDownloadValidation decodes and validates the download request,
// applies defaults, and injects the per-URL request list into context.
func MiddlewareDownloadValidation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body downloadBody
		if err := decodeJSONStrict(w, r, &body, 1<<20); err != nil {
			status := http.StatusBadRequest
			if err == ErrContentType {
				status = http.StatusUnsupportedMediaType
			}
			respondError(w, status, err)
			return
		}

		urls := body.URLs
		if body.URL != "" && len(urls) == 0 {
			urls = []string{body.URL}
		}
		urls = compactURLs(urls)
		if len(urls) == 0 {
			respondError(w, http.StatusBadRequest, ErrMissingURL)
			return
		}

		applyDefaults(&body)
		reqs := make([]data.DownloadRequest, 0, len(urls))
		for _, u := range urls {
			reqs = append(reqs, data.DownloadRequest{
				URL:         u,
				Quality:     body.Quality,
				Mode:        body.Mode,
				AudioFormat: body.AudioFormat,
				VideoFormat: body.VideoFormat,
				Platform:    body.Platform,
				Browser:     body.Browser,
				IsPlaylist:  body.IsPlaylist,
			})
		}

		ctx := context.WithValue(r.Context(), ctxKeyDownload{}, reqs)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MiddlewareInfoValidation decodes the info request and injects the URL
// into context.
func MiddlewareInfoValidation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body infoBody
		if err := decodeJSONStrict(w, r, &body, 1<<20); err != nil {
			status := http.StatusBadRequest
			if err == ErrContentType {
				status = http.StatusUnsupportedMediaType
			}
			respondError(w, status, err)
			return
		}
		if strings.TrimSpace(body.URL) == "" {
			respondError(w, http.StatusBadRequest, ErrMissingURL)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyInfo{}, body.URL)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func applyDefaults(b *downloadBody) {
	if b.Quality == "" {
		b.Quality = "best"
	}
	if b.Mode == "" {
		b.Mode = "both"
	}
	if b.AudioFormat == "" {
		b.AudioFormat = "mp3"
	}
	if b.VideoFormat == "" {
		b.VideoFormat = "mp4"
	}
	if b.Platform == "" {
		b.Platform = "youtube"
	}
	if b.Browser == "" {
		b.Browser = "chrome"
	}
}

func compactURLs(urls []string) []string {
	out := urls[:0]
	for _, u := range urls {
		if strings.TrimSpace(u) != "" {
			out = append(out, u)
		}
	}
	return out
}

// Log is the access-log middleware.
func (h *DownloadHandler) Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		rw := &rwLogger{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		if rw.status == 0 {
			rw.status = http.StatusOK
		}
		timeElapsed := time.Since(startTime)
		if hErr := rw.err; hErr != nil {
			h.l.Error(hErr.Error(),
				"method", r.Method,
				"url", r.URL.Path,
				"status", rw.status,
				"remote", r.RemoteAddr,
				"ua", r.UserAgent(),
				"dur_ms", timeElapsed.Milliseconds(),
				"bytes", rw.bytes)
			return
		}

		h.l.Info("", "method", r.Method,
			"url", r.URL.Path,
			"status", rw.status,
			"remote", r.RemoteAddr,
			"ua", r.UserAgent(),
			"dur_ms", timeElapsed.Milliseconds(),
			"bytes", rw.bytes)
	})
}
