package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	v1 "github.com/vgetd/vgetd/api/v1"
	"github.com/vgetd/vgetd/internal/auth"
)

// New sets up the application routes and required middleware. ready, when
// non-nil, gates /readyz (e.g. on the snapshot store's backing database).
func New(logger *slog.Logger, h *v1.DownloadHandler, ready func(context.Context) error) *mux.Router {

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Error("write healthz response", "err", err)
		}
	}).Methods("GET")

	r.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Error("write readyz response", "err", err)
		}
	}).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.Use(v1.RequestID)
	r.Use(h.Log)
	r.Use(auth.Middleware)

	api := r.PathPrefix("/api").Subrouter()

	// GETs
	get := api.Methods("GET").Subrouter()
	get.HandleFunc("/progress/stream/{id}", h.StreamProgress)
	get.HandleFunc("/progress/ws/{id}", h.StreamProgressWS)
	get.HandleFunc("/progress/{id}", h.GetProgress)
	get.HandleFunc("/queue", h.GetQueue)

	// POSTs
	download := api.Path("/download").Methods("POST").Subrouter()
	download.HandleFunc("", h.StartDownload)
	download.Use(v1.MiddlewareDownloadValidation)

	info := api.Path("/info").Methods("POST").Subrouter()
	info.HandleFunc("", h.GetInfo)
	info.Use(v1.MiddlewareInfoValidation)

	return r
}
