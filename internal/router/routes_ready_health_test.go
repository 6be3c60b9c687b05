package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	v1 "github.com/vgetd/vgetd/api/v1"
	"github.com/vgetd/vgetd/internal/data"
	"github.com/vgetd/vgetd/internal/engine"
)

// fakeDownloadSvc is a stub to satisfy service.Downloads in router tests.
type fakeDownloadSvc struct{}

func (f *fakeDownloadSvc) Start(ctx context.Context, reqs []data.DownloadRequest) []string {
	return nil
}
func (f *fakeDownloadSvc) Snapshot(ctx context.Context, id string) data.Snapshot {
	return data.UnknownSnapshot()
}
func (f *fakeDownloadSvc) Queue(ctx context.Context) []data.QueueEntry { return nil }
func (f *fakeDownloadSvc) Subscribe(id string) (<-chan data.Snapshot, func()) {
	ch := make(chan data.Snapshot)
	return ch, func() {}
}
func (f *fakeDownloadSvc) Info(ctx context.Context, url string) (*engine.Metadata, error) {
	return nil, errors.New("not implemented")
}

func newTestRouter(ready func(context.Context) error) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := v1.NewDownloadHandler(logger, &fakeDownloadSvc{})
	return New(logger, h, ready)
}

func TestHealthzOK(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != "ok" {
		t.Fatalf("expected body 'ok', got %q", got)
	}
}

func TestReadyzSuccess(t *testing.T) {
	r := newTestRouter(func(ctx context.Context) error { return nil })
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestReadyzNoProbe(t *testing.T) {
	r := newTestRouter(nil)
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 without a probe, got %d", w.Code)
	}
}

func TestReadyzFailure(t *testing.T) {
	r := newTestRouter(func(ctx context.Context) error { return errors.New("nope") })
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(nil)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
