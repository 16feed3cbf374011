package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeAPI struct {
	err   error
	calls atomic.Int32
}

func (f *fakeAPI) Ready(ctx context.Context) error {
	f.calls.Add(1)
	return f.err
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	checker := NewChecker(&fakeAPI{})
	resp := checker.Liveness(context.Background())
	if !resp.IsHealthy() {
		t.Error("Expected liveness to always be healthy")
	}
}

func TestReadiness_Healthy(t *testing.T) {
	t.Parallel()

	checker := NewChecker(&fakeAPI{})
	resp := checker.Readiness(context.Background())
	if !resp.IsHealthy() {
		t.Errorf("Expected healthy readiness, got %+v", resp)
	}
	if resp.Checks["circleci"].Status != StatusHealthy {
		t.Errorf("Expected healthy circleci check, got %+v", resp.Checks["circleci"])
	}
}

func TestReadiness_APIDown(t *testing.T) {
	t.Parallel()

	checker := NewChecker(&fakeAPI{err: errors.New("credential rejected with status 401")})
	resp := checker.Readiness(context.Background())
	if resp.IsHealthy() {
		t.Error("Expected unhealthy readiness when the API rejects us")
	}
	if msg := resp.Checks["circleci"].Message; msg == "" {
		t.Error("Expected the failure message to be carried")
	}
}

func TestReadiness_NoClient(t *testing.T) {
	t.Parallel()

	checker := NewChecker(nil)
	resp := checker.Readiness(context.Background())
	if resp.IsHealthy() {
		t.Error("Expected unhealthy readiness without a client")
	}
}

func TestReadiness_CachesResult(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	checker := NewChecker(api)

	checker.Readiness(context.Background())
	checker.Readiness(context.Background())
	checker.Readiness(context.Background())

	if got := api.calls.Load(); got != 1 {
		t.Errorf("Expected 1 API call with caching, got %d", got)
	}
}

func TestReadiness_CacheExpires(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	checker := NewChecker(api)
	checker.cacheTTL = 10 * time.Millisecond

	checker.Readiness(context.Background())
	time.Sleep(20 * time.Millisecond)
	checker.Readiness(context.Background())

	if got := api.calls.Load(); got != 2 {
		t.Errorf("Expected 2 API calls after cache expiry, got %d", got)
	}
}
