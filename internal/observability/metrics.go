package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds all application metrics implementing the golden 4 signals:
// - Latency: How long API calls and runs take
// - Traffic: API call / run / download throughput
// - Errors: Rate of failures per stage
// - Saturation: Runs currently in flight
//
// All Record methods are safe on a nil receiver so components can be
// wired without metrics.
type Metrics struct {
	meter metric.Meter

	// API client metrics (Latency, Traffic, Errors)
	APIRequestDuration metric.Float64Histogram
	APIRequestsTotal   metric.Int64Counter
	APIErrorsTotal     metric.Int64Counter

	// Run metrics (Latency, Traffic, Errors, Saturation)
	RunDuration    metric.Float64Histogram
	RunsTotal      metric.Int64Counter
	RunErrorsTotal metric.Int64Counter
	RunsActive     metric.Int64UpDownCounter

	// Poll metrics (Traffic)
	PollAttemptsTotal metric.Int64Counter

	// Artifact metrics (Traffic, Errors)
	DownloadsTotal        metric.Int64Counter
	DownloadErrorsTotal   metric.Int64Counter
	DownloadBytesTotal    metric.Int64Counter
	ExtractionsTotal      metric.Int64Counter
	ExtractionErrorsTotal metric.Int64Counter
}

// NewMetrics creates and registers all metrics with a Prometheus exporter.
func NewMetrics(ctx context.Context) (*Metrics, http.Handler, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter("usage-report")
	m := &Metrics{meter: meter}

	// API client metrics
	m.APIRequestDuration, err = meter.Float64Histogram(
		"api_request_duration_seconds",
		metric.WithDescription("CircleCI API request latency in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, nil, err
	}

	m.APIRequestsTotal, err = meter.Int64Counter(
		"api_requests_total",
		metric.WithDescription("Total number of CircleCI API requests"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.APIErrorsTotal, err = meter.Int64Counter(
		"api_errors_total",
		metric.WithDescription("Total number of CircleCI API errors (4xx, 5xx, transport)"),
	)
	if err != nil {
		return nil, nil, err
	}

	// Run metrics
	m.RunDuration, err = meter.Float64Histogram(
		"run_duration_seconds",
		metric.WithDescription("Export run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 30, 60, 120, 300, 600, 900, 1800, 3600),
	)
	if err != nil {
		return nil, nil, err
	}

	m.RunsTotal, err = meter.Int64Counter(
		"runs_total",
		metric.WithDescription("Total number of export runs started"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.RunErrorsTotal, err = meter.Int64Counter(
		"run_errors_total",
		metric.WithDescription("Total number of failed export runs"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.RunsActive, err = meter.Int64UpDownCounter(
		"runs_active",
		metric.WithDescription("Number of export runs in flight (saturation)"),
	)
	if err != nil {
		return nil, nil, err
	}

	// Poll metrics
	m.PollAttemptsTotal, err = meter.Int64Counter(
		"poll_attempts_total",
		metric.WithDescription("Total number of job status checks"),
	)
	if err != nil {
		return nil, nil, err
	}

	// Artifact metrics
	m.DownloadsTotal, err = meter.Int64Counter(
		"downloads_total",
		metric.WithDescription("Total number of artifact downloads completed"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.DownloadErrorsTotal, err = meter.Int64Counter(
		"download_errors_total",
		metric.WithDescription("Total number of artifact downloads that exhausted their retries"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.DownloadBytesTotal, err = meter.Int64Counter(
		"download_bytes_total",
		metric.WithDescription("Total compressed bytes downloaded"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.ExtractionsTotal, err = meter.Int64Counter(
		"extractions_total",
		metric.WithDescription("Total number of artifacts decompressed"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.ExtractionErrorsTotal, err = meter.Int64Counter(
		"extraction_errors_total",
		metric.WithDescription("Total number of failed decompressions"),
	)
	if err != nil {
		return nil, nil, err
	}

	return m, promhttp.Handler(), nil
}

// RecordAPIRequest records one CircleCI API request.
func (m *Metrics) RecordAPIRequest(ctx context.Context, operation string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		operationAttr(operation),
		statusAttr(statusCode),
	)

	m.APIRequestDuration.Record(ctx, duration.Seconds(), attrs)
	m.APIRequestsTotal.Add(ctx, 1, attrs)

	if statusCode == 0 || statusCode >= 400 {
		m.APIErrorsTotal.Add(ctx, 1, attrs)
	}
}

// RecordRunStarted records a new export run starting.
func (m *Metrics) RecordRunStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.RunsTotal.Add(ctx, 1)
	m.RunsActive.Add(ctx, 1)
}

// RecordRunFinished records an export run ending with an outcome.
func (m *Metrics) RecordRunFinished(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(outcomeAttr(outcome))
	m.RunDuration.Record(ctx, duration.Seconds(), attrs)
	m.RunsActive.Add(ctx, -1)

	if outcome != OutcomeCompleted {
		m.RunErrorsTotal.Add(ctx, 1, attrs)
	}
}

// RecordPollAttempt records one job status check and the state it observed.
func (m *Metrics) RecordPollAttempt(ctx context.Context, state string) {
	if m == nil {
		return
	}
	m.PollAttemptsTotal.Add(ctx, 1, metric.WithAttributes(stateAttr(state)))
}

// RecordDownload records a completed artifact download.
func (m *Metrics) RecordDownload(ctx context.Context, byteCount int64) {
	if m == nil {
		return
	}
	m.DownloadsTotal.Add(ctx, 1)
	m.DownloadBytesTotal.Add(ctx, byteCount)
}

// RecordDownloadError records a download that exhausted its retry budget.
func (m *Metrics) RecordDownloadError(ctx context.Context) {
	if m == nil {
		return
	}
	m.DownloadErrorsTotal.Add(ctx, 1)
}

// RecordExtraction records a successful decompression.
func (m *Metrics) RecordExtraction(ctx context.Context) {
	if m == nil {
		return
	}
	m.ExtractionsTotal.Add(ctx, 1)
}

// RecordExtractionError records a failed decompression.
func (m *Metrics) RecordExtractionError(ctx context.Context) {
	if m == nil {
		return
	}
	m.ExtractionErrorsTotal.Add(ctx, 1)
}
