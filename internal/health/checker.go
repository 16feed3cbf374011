// Package health provides liveness and readiness probes for the export run.
package health

import (
	"context"
	"sync"
	"time"
)

// ReadinessChecker is the interface for readiness checks.
// Implemented by the API client to verify the remote end is reachable
// and the credential is accepted.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult contains the result of a health check.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Response is the health check response.
type Response struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// Checker performs health checks against the export API.
type Checker struct {
	api      ReadinessChecker
	timeout  time.Duration
	cacheTTL time.Duration

	mu          sync.RWMutex
	lastCheck   time.Time
	cachedReady *Response
}

// NewChecker creates a new health checker.
func NewChecker(api ReadinessChecker) *Checker {
	return &Checker{
		api:      api,
		timeout:  5 * time.Second,
		cacheTTL: 10 * time.Second,
	}
}

// Liveness returns true if the process is alive. It never touches
// external services.
func (c *Checker) Liveness(ctx context.Context) *Response {
	return &Response{
		Status: StatusHealthy,
	}
}

// Readiness checks that the CircleCI API is reachable with the
// configured token. Results are cached briefly to avoid hammering the
// API from probe traffic.
func (c *Checker) Readiness(ctx context.Context) *Response {
	if cached := c.fresh(); cached != nil {
		return cached
	}

	check := c.checkAPI(ctx)
	status := StatusHealthy
	if check.Status != StatusHealthy {
		status = StatusUnhealthy
	}
	response := &Response{
		Status: status,
		Checks: map[string]CheckResult{"circleci": check},
	}

	c.mu.Lock()
	c.cachedReady = response
	c.lastCheck = time.Now()
	c.mu.Unlock()

	return response
}

// fresh returns the cached readiness response while it is still within
// its TTL, or nil when a new check is due.
func (c *Checker) fresh() *Response {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cachedReady != nil && time.Since(c.lastCheck) < c.cacheTTL {
		return c.cachedReady
	}
	return nil
}

// checkAPI verifies the export API accepts our credential.
func (c *Checker) checkAPI(ctx context.Context) CheckResult {
	if c.api == nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: "api client not configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.api.Ready(ctx); err != nil {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: err.Error(),
		}
	}

	return CheckResult{
		Status: StatusHealthy,
	}
}

// IsHealthy returns true if the overall status is healthy.
func (r *Response) IsHealthy() bool {
	return r.Status == StatusHealthy
}
