package cloudevent

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sender delivers CloudEvents over HTTP, reusing connections across
// sends to the same endpoint.
type Sender struct {
	client *http.Client
}

// NewSender creates a Sender. A non-positive timeout falls back to 10
// seconds.
func NewSender(timeout time.Duration) *Sender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sender{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// SendOptions controls how a CloudEvent is sent.
type SendOptions struct {
	SigningKey string // HMAC key for signing (empty to skip)
}

// Send POSTs the event in structured JSON mode. Any 2xx response
// counts as delivered; everything else is an *HTTPError.
func (s *Sender) Send(ctx context.Context, url string, event *CloudEvent, opts SendOptions) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := s.newRequest(ctx, url, event, payload, opts)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver event: %w", err)
	}
	// Drain so the connection can be reused
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode}
	}
	return nil
}

func (s *Sender) newRequest(ctx context.Context, url string, event *CloudEvent, payload []byte, opts SendOptions) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/cloudevents+json")
	for name, value := range map[string]string{
		"Ce-Specversion": event.SpecVersion,
		"Ce-Type":        event.Type,
		"Ce-Source":      event.Source,
		"Ce-Subject":     event.Subject,
		"Ce-Id":          event.ID,
		"Ce-Time":        event.Time.Format(time.RFC3339),
	} {
		req.Header.Set(name, value)
	}

	if opts.SigningKey != "" {
		mac := hmac.New(sha256.New, []byte(opts.SigningKey))
		mac.Write(payload)
		req.Header.Set("X-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}
	return req, nil
}

// HTTPError is a delivery attempt the endpoint answered with a
// non-2xx status.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("endpoint returned HTTP %d", e.StatusCode)
}

// IsClientError reports whether err is a 4xx delivery failure, which
// a retry cannot fix.
func IsClientError(err error) bool {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode >= 400 && he.StatusCode < 500
	}
	return false
}
