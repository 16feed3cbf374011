// usage-report drives one CircleCI usage export job: submit, poll to a
// terminal state, then download and unpack the resulting reports.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"usage-report/internal/artifact"
	"usage-report/internal/circleci"
	"usage-report/internal/config"
	"usage-report/internal/export"
	"usage-report/internal/health"
	"usage-report/internal/observability"
	"usage-report/internal/ops"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Local development overrides; variables already set in the
	// environment win
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	if err := run(); err != nil {
		slog.Error("Export run failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	start, end, err := cfg.Window()
	if err != nil {
		return err
	}

	// Cancel the run on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		slog.Info("Received shutdown signal", "signal", sig)
		cancel()
	}()

	// Setup metrics
	metrics, metricsHandler, err := observability.NewMetrics(ctx)
	if err != nil {
		return err
	}

	client := circleci.NewClient(cfg.BaseURL, cfg.Token, cfg.HTTPTimeout, metrics)
	tracker := ops.NewRunTracker()

	// Probes, metrics, and run progress for the lifetime of the process
	opsServer := ops.NewServer(cfg.MetricsPort, ops.NewRouter(ops.RouterConfig{
		MetricsHandler: metricsHandler,
		HealthChecker:  health.NewChecker(client),
		Tracker:        tracker,
	}))
	opsServer.Start()
	defer opsServer.Stop(5 * time.Second)

	if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
		return err
	}

	// The export covers every organization sharing the owner's plan
	orgs, err := client.SharedPlanOrgs(ctx, cfg.OrgID)
	if err != nil {
		return err
	}
	if len(orgs) == 0 {
		return errors.New("no organizations found on the shared plan")
	}
	for _, org := range orgs {
		slog.Info("Organization on plan", "id", org.ID, "name", org.Name, "vcs", org.VCSType)
	}

	runner := export.NewRunner(client, export.RunnerConfig{
		OwnerID:   cfg.OrgID,
		ReportDir: cfg.ReportDir,
		Poll: export.PollerOptions{
			MaxAttempts: cfg.PollMaxAttempts,
			Interval:    cfg.PollInterval,
			MaxInterval: cfg.PollMaxInterval,
			OnAttempt: func(attempt int, status *export.JobStatus) {
				tracker.PollObserved(attempt+1, string(status.State))
			},
		},
		Downloader: artifact.NewDownloader(nil, cfg.DownloadRetries, metrics),
		Notifier: export.NewNotifier(export.NotifierConfig{
			URL:        cfg.NotifyURL,
			Events:     cfg.NotifyEvents,
			SigningKey: cfg.NotifyKey,
			Timeout:    cfg.NotifyTimeout,
		}),
		Metrics: metrics,
	})

	tracker.SetPhase(ops.PhaseExporting)
	result, runErr := runner.Run(ctx, &export.RunRequest{
		Window: export.TimeRange{Start: start, End: end},
		Orgs:   orgs,
	})
	if runErr == nil && len(result.CSVPaths) == 0 {
		// A completed job that produced nothing usable still fails the
		// invocation
		runErr = errors.New("export completed but produced no usable reports")
	}
	tracker.Finish(result.RunID, result.JobID, len(result.CSVPaths), runErr)
	if runErr != nil {
		return runErr
	}

	slog.Info("Usage reports ready",
		"jobId", result.JobID,
		"reports", len(result.CSVPaths),
		"dir", cfg.ReportDir)
	return nil
}
