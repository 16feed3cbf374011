package export

import (
	"context"
	"log/slog"
	"time"

	"usage-report/internal/apperrors"
	"usage-report/internal/observability"
	"usage-report/pkg/backoff"
)

// PollerOptions tunes the poll loop. Zero values take defaults.
type PollerOptions struct {
	MaxAttempts int           // status checks before giving up (default 30)
	Interval    time.Duration // base of the linear ramp (default 30s)
	MaxInterval time.Duration // ramp ceiling (default 5m)

	// Sleep is the context-aware wait between attempts. Tests inject a
	// recording no-op so the suite never actually waits.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnAttempt observes each completed status query.
	OnAttempt func(attempt int, status *JobStatus)
}

// Poller drives a submitted job to a terminal state by bounded polling.
type Poller struct {
	api         API
	maxAttempts int
	backoffCfg  *backoff.Config
	sleep       func(ctx context.Context, d time.Duration) error
	onAttempt   func(attempt int, status *JobStatus)
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewPoller creates a new Poller.
func NewPoller(api API, metrics *observability.Metrics, opts PollerOptions) *Poller {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 30
	}
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = 5 * time.Minute
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &Poller{
		api:         api,
		maxAttempts: opts.MaxAttempts,
		backoffCfg:  &backoff.Config{Initial: opts.Interval, Max: opts.MaxInterval},
		sleep:       opts.Sleep,
		onAttempt:   opts.OnAttempt,
		metrics:     metrics,
		logger:      slog.With("component", "export-poller"),
	}
}

// Poll queries job status until a terminal state or the attempt budget
// runs out. The last observed status is returned even when err != nil;
// status is nil only when no query ever succeeded.
//
// Error classes are distinct on purpose: a failed status query maps to
// ErrRemoteStatus, the job itself failing to ErrJobFailed, and an
// exhausted budget to ErrJobTimedOut (the job may still finish remotely).
func (p *Poller) Poll(ctx context.Context, orgID, jobID string) (*JobStatus, error) {
	var last *JobStatus

	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		status, err := p.api.GetUsageExportJob(ctx, orgID, jobID)
		if err != nil {
			p.metrics.RecordPollAttempt(ctx, "error")
			return last, apperrors.RemoteStatus("export.poll", err)
		}
		last = status

		p.metrics.RecordPollAttempt(ctx, string(status.State))
		if p.onAttempt != nil {
			p.onAttempt(attempt, status)
		}

		switch status.State {
		case StateCompleted:
			p.logger.Info("export job completed",
				"jobId", jobID,
				"attempts", attempt+1,
				"urlCount", len(status.DownloadURLs))
			return status, nil
		case StateProcessing:
			// fall through to the wait below
		default:
			p.logger.Error("export job reached a failure state",
				"jobId", jobID,
				"state", status.State)
			return status, apperrors.JobFailed(string(status.State), status.Raw)
		}

		// No wait after the final check
		if attempt == p.maxAttempts-1 {
			break
		}

		delay := backoff.Linear(attempt, p.backoffCfg)
		p.logger.Info("export job still processing",
			"jobId", jobID,
			"attempt", attempt+1,
			"maxAttempts", p.maxAttempts,
			"nextCheckIn", delay)
		if err := p.sleep(ctx, delay); err != nil {
			return last, err
		}
	}

	p.logger.Error("export job did not finish within the attempt budget",
		"jobId", jobID,
		"maxAttempts", p.maxAttempts)
	return last, apperrors.JobTimedOut(p.maxAttempts)
}

// sleepContext waits for the duration or the context, whichever ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
