package ops

import (
	"net/http"

	"usage-report/internal/health"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	MetricsHandler http.Handler
	HealthChecker  *health.Checker
	Tracker        *RunTracker
}

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(cfg RouterConfig) http.Handler {
	handler := NewHandler(cfg.HealthChecker, cfg.Tracker)

	mux := http.NewServeMux()

	// Health check endpoints (liveness/readiness probes)
	mux.HandleFunc("GET /livez", handler.Livez)
	mux.HandleFunc("GET /readyz", handler.Readyz)

	// Run progress
	mux.HandleFunc("GET /v1/run", handler.GetRun)

	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}

	// Recovery wraps logging so a logging panic is caught too
	return RecoveryMiddleware(LoggingMiddleware(mux))
}
