package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"maiveui/ports"
)

// Version is stamped at build time via -ldflags
var Version = "dev"

// OpsApp is the operational sidecar: liveness, readiness and version, served
// on its own port so the wizard API can be fronted separately.
type OpsApp struct {
	router    *chi.Mux
	estimator ports.Estimator
	started   time.Time
}

// NewOpsApp builds the ops router
func NewOpsApp(estimator ports.Estimator) *OpsApp {
	app := &OpsApp{
		router:    chi.NewRouter(),
		estimator: estimator,
		started:   time.Now(),
	}

	app.router.Use(middleware.RequestID)
	app.router.Use(middleware.Recoverer)

	app.router.Get("/health", app.handleHealth)
	app.router.Get("/ready", app.handleReady)
	app.router.Get("/version", app.handleVersion)
	return app
}

// Handler exposes the router
func (a *OpsApp) Handler() http.Handler {
	return a.router
}

// Start runs the ops server
func (a *OpsApp) Start(addr string) error {
	return http.ListenAndServe(addr, a.router)
}

func (a *OpsApp) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(a.started).Round(time.Second).String(),
	})
}

// handleReady reports whether the estimator service answers
func (a *OpsApp) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := a.estimator.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "estimator unreachable",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *OpsApp) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"version": Version})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
