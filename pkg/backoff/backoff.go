// Package backoff provides backoff calculation policies.
package backoff

import (
	"math"
	"time"
)

// Config for backoff policies. Zero values use the policy's defaults.
type Config struct {
	Initial time.Duration
	Max     time.Duration
}

// Linear calculates a linearly increasing backoff for a given attempt.
// Attempt 0 returns initial, attempt 1 returns initial*2, etc., capped at max.
// Defaults: initial 30s, max 5m.
func Linear(attempt int, cfg *Config) time.Duration {
	initial := 30 * time.Second
	maxBackoff := 300 * time.Second
	if cfg != nil {
		if cfg.Initial > 0 {
			initial = cfg.Initial
		}
		if cfg.Max > 0 {
			maxBackoff = cfg.Max
		}
	}

	if attempt < 0 {
		return initial
	}
	backoff := float64(initial) * float64(attempt+1)
	if backoff > float64(maxBackoff) {
		backoff = float64(maxBackoff)
	}
	return time.Duration(backoff)
}

// Exponential calculates exponential backoff for a given attempt.
// Attempt 1 returns initial, attempt 2 returns initial*2, etc.
// Defaults: initial 100ms, max 5s.
func Exponential(attempt int, cfg *Config) time.Duration {
	initial := 100 * time.Millisecond
	maxBackoff := 5 * time.Second
	if cfg != nil {
		if cfg.Initial > 0 {
			initial = cfg.Initial
		}
		if cfg.Max > 0 {
			maxBackoff = cfg.Max
		}
	}

	if attempt < 1 {
		return initial
	}
	backoff := float64(initial) * math.Pow(2.0, float64(attempt-1))
	if backoff > float64(maxBackoff) {
		backoff = float64(maxBackoff)
	}
	return time.Duration(backoff)
}
