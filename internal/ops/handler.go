package ops

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"usage-report/internal/health"
)

// Handler contains HTTP handlers for the operational endpoints
type Handler struct {
	health  *health.Checker
	tracker *RunTracker
}

// NewHandler creates a new ops handler
func NewHandler(healthChecker *health.Checker, tracker *RunTracker) *Handler {
	return &Handler{
		health:  healthChecker,
		tracker: tracker,
	}
}

// Livez handles GET /livez - liveness probe.
// Alive means the process runs; dependencies are not consulted.
func (h *Handler) Livez(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.health.Liveness(r.Context()))
}

// Readyz handles GET /readyz - readiness probe.
// 200 when the CircleCI API accepts our token, 503 otherwise.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	resp := h.health.Readiness(r.Context())

	status := http.StatusOK
	if !resp.IsHealthy() {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, resp)
}

// GetRun handles GET /v1/run - the current export run's progress.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.tracker == nil {
		h.writeError(w, http.StatusNotFound, "no run tracking configured")
		return
	}
	h.writeJSON(w, http.StatusOK, h.tracker.Snapshot())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
