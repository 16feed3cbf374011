package export

import (
	"context"
	"log/slog"
	"time"

	"usage-report/pkg/backoff"
	"usage-report/pkg/cloudevent"
)

// NotifierConfig configures run event delivery.
type NotifierConfig struct {
	URL        string        // callback endpoint; empty disables delivery
	Events     []string      // event type allow-list (empty = all)
	SigningKey string        // HMAC key for payload signing (empty to skip)
	Timeout    time.Duration // per-delivery HTTP timeout
	MaxRetries int           // retries after the first attempt (default 3)
}

// Notifier delivers run events to a callback endpoint, retrying
// transient failures with exponential backoff and short-circuiting on
// client errors. A nil *Notifier drops everything, so callers never
// need to branch on whether callbacks are configured.
type Notifier struct {
	cfg    NotifierConfig
	sender *cloudevent.Sender
	logger *slog.Logger
}

// NewNotifier creates a Notifier, or nil when no URL is configured.
func NewNotifier(cfg NotifierConfig) *Notifier {
	if cfg.URL == "" {
		return nil
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	return &Notifier{
		cfg:    cfg,
		sender: cloudevent.NewSender(cfg.Timeout),
		logger: slog.With("component", "export-notifier"),
	}
}

// Notify delivers one event. Failures are logged, never returned:
// callback delivery must not affect the run.
func (n *Notifier) Notify(ctx context.Context, event *cloudevent.CloudEvent) {
	if n == nil {
		return
	}
	if !FilteredEvents(event.Type, n.cfg.Events) {
		return
	}
	if err := n.sendWithRetry(ctx, event); err != nil {
		n.logger.Warn("failed to deliver run event", "type", event.Type, "error", err)
	}
}

func (n *Notifier) sendWithRetry(ctx context.Context, event *cloudevent.CloudEvent) error {
	opts := cloudevent.SendOptions{SigningKey: n.cfg.SigningKey}

	var lastErr error
	for attempt := range n.cfg.MaxRetries + 1 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff.Exponential(attempt, nil)):
			}
		}

		lastErr = n.sender.Send(ctx, n.cfg.URL, event, opts)
		if lastErr == nil {
			return nil
		}
		if cloudevent.IsClientError(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
