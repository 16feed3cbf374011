// Package ops serves the operational endpoints for an export run:
// liveness/readiness probes, Prometheus metrics, and a run status view.
package ops

import (
	"sync"
	"time"
)

// Run phases, in lifecycle order.
const (
	PhaseStarting  = "starting"
	PhaseExporting = "exporting"
	PhaseCompleted = "completed"
	PhaseFailed    = "failed"
)

// RunSnapshot is a point-in-time view of the export run, served on the
// run status endpoint. Poll fields are only meaningful while exporting.
type RunSnapshot struct {
	Phase       string     `json:"phase"`
	RunID       string     `json:"runId,omitempty"`
	JobID       string     `json:"jobId,omitempty"`
	PollAttempt int        `json:"pollAttempt,omitempty"`
	JobState    string     `json:"jobState,omitempty"`
	Reports     int        `json:"reports"`
	StartedAt   time.Time  `json:"startedAt"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// RunTracker records run progress for the status endpoint. Safe for
// concurrent use; the run writes, probe traffic reads.
type RunTracker struct {
	mu   sync.RWMutex
	snap RunSnapshot
}

// NewRunTracker creates a tracker in the starting phase.
func NewRunTracker() *RunTracker {
	return &RunTracker{
		snap: RunSnapshot{
			Phase:     PhaseStarting,
			StartedAt: time.Now().UTC(),
		},
	}
}

// SetPhase moves the run into the given phase.
func (t *RunTracker) SetPhase(phase string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.Phase = phase
}

// PollObserved records the latest status query during the poll loop.
// The attempt is reported 1-based.
func (t *RunTracker) PollObserved(attempt int, state string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.PollAttempt = attempt
	t.snap.JobState = state
}

// Finish records the run outcome.
func (t *RunTracker) Finish(runID, jobID string, reports int, err error) {
	now := time.Now().UTC()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap.RunID = runID
	t.snap.JobID = jobID
	t.snap.Reports = reports
	t.snap.FinishedAt = &now
	if err != nil {
		t.snap.Phase = PhaseFailed
		t.snap.Error = err.Error()
		return
	}
	t.snap.Phase = PhaseCompleted
}

// Snapshot returns a copy of the current state.
func (t *RunTracker) Snapshot() RunSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}
