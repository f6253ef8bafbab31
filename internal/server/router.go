// Package server exposes health, metrics and manual sync endpoints.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"keepersecurity.com/ksm-catalog-sync/internal/logging"
	"keepersecurity.com/ksm-catalog-sync/provider"
)

type handler struct {
	provider provider.IEntityProvider
	timeout  time.Duration
}

// NewRouter builds the HTTP surface. syncTimeout bounds a manually triggered cycle.
func NewRouter(p provider.IEntityProvider, syncTimeout time.Duration) http.Handler {
	var h = &handler{provider: p, timeout: syncTimeout}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/api/sync", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Post("/", h.trigger)
	})
	return r
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) status(w http.ResponseWriter, _ *http.Request) {
	var last = h.provider.LastResult()
	if last == nil {
		writeJSON(w, http.StatusOK, map[string]string{"provider": h.provider.Name(), "stage": string(provider.StageIdle)})
		return
	}
	writeJSON(w, http.StatusOK, last)
}

func (h *handler) trigger(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	var result = h.provider.RunSync(ctx)
	switch {
	case result.Ok():
		writeJSON(w, http.StatusOK, result)
	case result.Skipped():
		writeJSON(w, http.StatusConflict, result)
	default:
		writeJSON(w, http.StatusBadGateway, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("failed to write response")
	}
}
