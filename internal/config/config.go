// Package config provides configuration loading from environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"usage-report/internal/apperrors"
)

// Config holds configuration for a usage-report run.
type Config struct {
	Token string // CircleCI API token
	OrgID string // Organization owning the export job

	StartDate string // Report window start, RFC3339
	EndDate   string // Report window end, RFC3339

	ReportDir   string
	BaseURL     string
	HTTPTimeout time.Duration

	PollMaxAttempts int
	PollInterval    time.Duration
	PollMaxInterval time.Duration
	DownloadRetries int

	MetricsPort string

	NotifyURL     string   // Callback endpoint for run events (empty to disable)
	NotifyEvents  []string // Event type allow-list (empty = all)
	NotifyKey     string   // HMAC signing key for event payloads
	NotifyTimeout time.Duration
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Token:           resolveSecret("CIRCLE_TOKEN_FILE", "CIRCLE_TOKEN"),
		OrgID:           GetEnv("PRIMARY_ORG_ID", ""),
		StartDate:       GetEnv("START_DATE", ""),
		EndDate:         GetEnv("END_DATE", ""),
		ReportDir:       GetEnv("REPORT_DIR", "usage_reports"),
		BaseURL:         GetEnv("CIRCLE_BASE_URL", "https://circleci.com"),
		HTTPTimeout:     GetDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		PollMaxAttempts: GetIntEnv("POLL_MAX_ATTEMPTS", 30),
		PollInterval:    GetDurationEnv("POLL_INTERVAL", 30*time.Second),
		PollMaxInterval: GetDurationEnv("POLL_MAX_INTERVAL", 5*time.Minute),
		DownloadRetries: GetIntEnv("DOWNLOAD_RETRIES", 3),
		MetricsPort:     GetEnv("METRICS_PORT", "9090"),
		NotifyURL:       GetEnv("NOTIFY_URL", ""),
		NotifyEvents:    splitList(GetEnv("NOTIFY_EVENTS", "")),
		NotifyKey:       resolveSecret("NOTIFY_KEY_FILE", "NOTIFY_KEY"),
		NotifyTimeout:   GetDurationEnv("NOTIFY_TIMEOUT", 10*time.Second),
	}
}

// resolveSecret prefers a mounted secret file over the raw env var.
func resolveSecret(fileKey, envKey string) string {
	if value := GetSecretFile(GetEnv(fileKey, "")); value != "" {
		return value
	}
	return GetEnv(envKey, "")
}

// Validate checks that everything a run needs is present and well-formed.
func (c *Config) Validate() error {
	if c.Token == "" {
		return apperrors.Validation("token", "CIRCLE_TOKEN or CIRCLE_TOKEN_FILE is required")
	}
	if c.OrgID == "" {
		return apperrors.Validation("orgID", "PRIMARY_ORG_ID is required")
	}
	if _, _, err := c.Window(); err != nil {
		return err
	}
	return nil
}

// Window parses the report window boundaries from the configured dates.
func (c *Config) Window() (start, end time.Time, err error) {
	if c.StartDate == "" {
		return start, end, apperrors.Validation("start", "START_DATE is required")
	}
	if c.EndDate == "" {
		return start, end, apperrors.Validation("end", "END_DATE is required")
	}
	start, err = time.Parse(time.RFC3339, c.StartDate)
	if err != nil {
		return start, end, apperrors.Validation("start", fmt.Sprintf("START_DATE must be RFC3339: %v", err))
	}
	end, err = time.Parse(time.RFC3339, c.EndDate)
	if err != nil {
		return start, end, apperrors.Validation("end", fmt.Sprintf("END_DATE must be RFC3339: %v", err))
	}
	if !start.Before(end) {
		return start, end, apperrors.Validation("start", "START_DATE must be before END_DATE")
	}
	return start, end, nil
}

// splitList parses a comma-separated env value into trimmed entries.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	entries := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			entries = append(entries, trimmed)
		}
	}
	if len(entries) == 0 {
		return nil
	}
	return entries
}
