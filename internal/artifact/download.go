package artifact

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"usage-report/internal/apperrors"
	"usage-report/internal/observability"
)

// Downloader fetches export artifacts over HTTP with a bounded attempt
// budget per URL. Pre-signed URL hiccups are assumed short-lived, so
// retries are immediate.
type Downloader struct {
	client     *http.Client
	maxRetries int
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewDownloader creates a new Downloader. maxRetries is the total number
// of attempts per URL (default 3).
func NewDownloader(client *http.Client, maxRetries int, metrics *observability.Metrics) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Downloader{
		client:     client,
		maxRetries: maxRetries,
		metrics:    metrics,
		logger:     slog.With("component", "downloader"),
	}
}

// Download fetches every URL into dir, named by the policy. Individual
// failures never abort the batch: each URL yields an Artifact, failed
// ones carry Err and no CompressedPath. dir must already exist.
func (d *Downloader) Download(ctx context.Context, urls []string, dir string, name NamingPolicy) []Artifact {
	artifacts := make([]Artifact, 0, len(urls))
	for i, url := range urls {
		artifacts = append(artifacts, d.downloadOne(ctx, url, filepath.Join(dir, name(url, i))))
	}
	return artifacts
}

// downloadOne retries a single URL until success or the budget runs out.
func (d *Downloader) downloadOne(ctx context.Context, url, dest string) Artifact {
	a := Artifact{SourceURL: url}

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		attempts = attempt

		written, err := d.fetch(ctx, url, dest)
		if err == nil {
			a.CompressedPath = dest
			d.metrics.RecordDownload(ctx, written)
			d.logger.Info("downloaded artifact", "path", dest, "bytes", written, "attempt", attempt)
			return a
		}
		lastErr = err
		d.logger.Warn("artifact download attempt failed",
			"path", dest,
			"attempt", attempt,
			"maxAttempts", d.maxRetries,
			"error", err)

		// Retrying on a dead context would just spin
		if ctx.Err() != nil {
			break
		}
	}

	a.Err = apperrors.DownloadExhausted(url, attempts, lastErr)
	d.metrics.RecordDownloadError(ctx)
	d.logger.Error("artifact download exhausted its attempts", "path", dest, "attempts", attempts)
	return a
}

// fetch performs one attempt, streaming the response body to dest.
func (d *Downloader) fetch(ctx context.Context, url, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	file, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, resp.Body)
	if err != nil {
		return written, fmt.Errorf("failed to write file: %w", err)
	}

	if err := file.Sync(); err != nil {
		return written, fmt.Errorf("failed to sync file: %w", err)
	}

	return written, nil
}
