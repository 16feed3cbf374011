package export

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"usage-report/internal/artifact"
	"usage-report/internal/observability"
)

// filePrefix is the base name every report file starts with.
const filePrefix = "all_orgs"

// RunRequest describes one export run.
type RunRequest struct {
	Window TimeRange
	Orgs   []Org    // org records, usually from the shared-plan listing
	OrgIDs []string // extra raw identifiers to include
}

// RunResult is everything a run produced. Status and Artifacts are
// populated as far as the run got, so failures stay diagnosable.
type RunResult struct {
	RunID     string
	JobID     string
	Status    *JobStatus
	Artifacts []artifact.Artifact
	CSVPaths  []string
}

// RunnerConfig wires a Runner's collaborators.
type RunnerConfig struct {
	OwnerID    string        // organization that owns the export job
	ReportDir  string        // destination directory, created by the caller
	Poll       PollerOptions // poll loop tuning
	Downloader *artifact.Downloader
	Notifier   *Notifier
	Metrics    *observability.Metrics
}

// Runner drives one export job from submission to extracted reports.
// One Run call handles exactly one job; there is no persistence and no
// resumption across restarts.
type Runner struct {
	api       API
	submitter *Submitter
	cfg       RunnerConfig
	logger    *slog.Logger
}

// NewRunner creates a new Runner.
func NewRunner(api API, cfg RunnerConfig) *Runner {
	if cfg.Downloader == nil {
		cfg.Downloader = artifact.NewDownloader(nil, 0, cfg.Metrics)
	}
	return &Runner{
		api:       api,
		submitter: NewSubmitter(api),
		cfg:       cfg,
		logger:    slog.With("component", "export-runner"),
	}
}

// Run submits the job, polls it to a terminal state, then downloads,
// validates, and extracts every artifact. Run-level failures abort with
// a classified error; per-artifact failures only shrink the result.
func (r *Runner) Run(ctx context.Context, req *RunRequest) (*RunResult, error) {
	runID := uuid.New().String()
	logger := r.logger.With("runId", runID)
	builder := NewEventBuilder(runID)
	result := &RunResult{RunID: runID}

	start := time.Now()
	r.cfg.Metrics.RecordRunStarted(ctx)

	outcome := observability.OutcomeFailed
	var runErr error
	defer func() {
		r.cfg.Metrics.RecordRunFinished(ctx, outcome, time.Since(start))
		r.cfg.Notifier.Notify(ctx, builder.BuildRunExitEvent(result.JobID, outcome, len(result.CSVPaths), runErr))
	}()

	submitReq := &Request{
		OrgID:        r.cfg.OwnerID,
		Window:       req.Window,
		SharedOrgIDs: collectOrgIDs(req),
	}
	submitReq.Normalize()

	logger.Info("starting export run",
		"orgId", submitReq.OrgID,
		"window", submitReq.Window.DatePart(),
		"sharedOrgs", len(submitReq.SharedOrgIDs))
	r.cfg.Notifier.Notify(ctx, builder.BuildRunStartEvent(submitReq))

	jobID, err := r.submitter.Submit(ctx, submitReq)
	if err != nil {
		runErr = err
		return result, err
	}
	result.JobID = jobID
	r.cfg.Notifier.Notify(ctx, builder.BuildJobSubmittedEvent(jobID))

	pollOpts := r.cfg.Poll
	callerOnAttempt := pollOpts.OnAttempt
	pollOpts.OnAttempt = func(attempt int, status *JobStatus) {
		if callerOnAttempt != nil {
			callerOnAttempt(attempt, status)
		}
		r.cfg.Notifier.Notify(ctx, builder.BuildPollEvent(jobID, attempt+1, status.State))
	}
	poller := NewPoller(r.api, r.cfg.Metrics, pollOpts)

	status, err := poller.Poll(ctx, r.cfg.OwnerID, jobID)
	result.Status = status
	if err != nil {
		runErr = err
		return result, err
	}
	r.cfg.Notifier.Notify(ctx, builder.BuildJobCompletedEvent(jobID, len(status.DownloadURLs)))

	// A completed job with nothing to download is a valid outcome
	if len(status.DownloadURLs) == 0 {
		logger.Info("export job completed with no files to download")
		outcome = observability.OutcomeCompleted
		return result, nil
	}

	prefix := filePrefix + "_" + start.UTC().Format("20060102_150405")
	naming := artifact.DateRangeNaming(prefix, req.Window.Start, req.Window.End)
	artifacts := r.cfg.Downloader.Download(ctx, status.DownloadURLs, r.cfg.ReportDir, naming)

	result.CSVPaths = r.processArtifacts(ctx, logger, builder, artifacts)
	result.Artifacts = artifacts

	logger.Info("export run finished",
		"jobId", jobID,
		"urlCount", len(status.DownloadURLs),
		"reports", len(result.CSVPaths),
		"duration", time.Since(start))
	outcome = observability.OutcomeCompleted
	return result, nil
}

// processArtifacts validates and extracts downloaded artifacts in place,
// returning the decompressed report paths. An artifact that fails the
// gzip check is terminal: excluded, never extracted, never retried.
func (r *Runner) processArtifacts(ctx context.Context, logger *slog.Logger, builder *EventBuilder, artifacts []artifact.Artifact) []string {
	var csvPaths []string
	for i := range artifacts {
		a := &artifacts[i]
		if a.Err != nil {
			r.cfg.Notifier.Notify(ctx, builder.BuildArtifactEvent(a.SourceURL, "", "download_failed", a.Err))
			continue
		}

		if !artifact.IsGzip(a.CompressedPath) {
			a.Err = artifact.ErrNotGzip
			logger.Warn("artifact failed gzip validation, skipping", "path", a.CompressedPath)
			r.cfg.Notifier.Notify(ctx, builder.BuildArtifactEvent(a.SourceURL, a.CompressedPath, "invalid", a.Err))
			continue
		}
		a.Validated = true

		dst := artifact.DecompressedName(a.CompressedPath)
		if err := artifact.Extract(a.CompressedPath, dst); err != nil {
			a.Err = err
			r.cfg.Metrics.RecordExtractionError(ctx)
			logger.Warn("artifact extraction failed", "path", a.CompressedPath, "error", err)
			r.cfg.Notifier.Notify(ctx, builder.BuildArtifactEvent(a.SourceURL, a.CompressedPath, "extraction_failed", err))
			continue
		}
		a.DecompressedPath = dst
		r.cfg.Metrics.RecordExtraction(ctx)

		logger.Info("artifact ready", "path", dst)
		r.cfg.Notifier.Notify(ctx, builder.BuildArtifactEvent(a.SourceURL, dst, "extracted", nil))
		csvPaths = append(csvPaths, dst)
	}
	return csvPaths
}

// collectOrgIDs merges org records and raw identifiers into one list.
func collectOrgIDs(req *RunRequest) []string {
	ids := make([]string, 0, len(req.Orgs)+len(req.OrgIDs))
	for _, org := range req.Orgs {
		if org.ID != "" {
			ids = append(ids, org.ID)
		}
	}
	ids = append(ids, req.OrgIDs...)
	return ids
}
