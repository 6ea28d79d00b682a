package ui

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionCounter reports how many sessions are held
type SessionCounter interface {
	Len() int
}

// NewOpsRouter builds the operations router: Prometheus metrics, a health probe and pprof under /debug
func NewOpsRouter(sessions SessionCounter) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":   "ok",
			"sessions": sessions.Len(),
		})
	})
	r.Mount("/debug", chimiddleware.Profiler())
	return r
}
