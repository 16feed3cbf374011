package cloudevent

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	event := New("export.run.start", "usage-report/export", "run-1", "id-1", map[string]any{"orgId": "org"})

	if event.SpecVersion != "1.0" {
		t.Errorf("expected specversion 1.0, got %q", event.SpecVersion)
	}
	if event.DataContentType != "application/json" {
		t.Errorf("expected json content type, got %q", event.DataContentType)
	}
	if event.Time.IsZero() {
		t.Error("expected event time to be set")
	}
	if event.Time.Location() != time.UTC {
		t.Error("expected event time in UTC")
	}
}

func TestSend_HeadersAndBody(t *testing.T) {
	t.Parallel()

	var gotHeaders http.Header
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	event := New("export.poll", "usage-report/export", "run-1", "id-2", map[string]any{"attempt": 1})
	sender := NewSender(5 * time.Second)

	if err := sender.Send(context.Background(), server.URL, event, SendOptions{}); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if ct := gotHeaders.Get("Content-Type"); ct != "application/cloudevents+json" {
		t.Errorf("unexpected content type %q", ct)
	}
	if typ := gotHeaders.Get("Ce-Type"); typ != "export.poll" {
		t.Errorf("unexpected Ce-Type %q", typ)
	}
	if src := gotHeaders.Get("Ce-Source"); src != "usage-report/export" {
		t.Errorf("unexpected Ce-Source %q", src)
	}
	if sub := gotHeaders.Get("Ce-Subject"); sub != "run-1" {
		t.Errorf("unexpected Ce-Subject %q", sub)
	}
	if sig := gotHeaders.Get("X-Signature-256"); sig != "" {
		t.Errorf("expected no signature without key, got %q", sig)
	}
	if len(gotBody) == 0 {
		t.Error("expected a JSON body")
	}
}

func TestSend_SignsPayload(t *testing.T) {
	t.Parallel()

	var gotSignature string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Signature-256")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	event := New("export.run.exit", "usage-report/export", "run-1", "id-3", nil)
	sender := NewSender(5 * time.Second)

	if err := sender.Send(context.Background(), server.URL, event, SendOptions{SigningKey: "secret"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write(gotBody)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	if gotSignature != expected {
		t.Errorf("signature mismatch: got %q, want %q", gotSignature, expected)
	}
}

func TestSend_NonSuccessStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	event := New("export.poll", "usage-report/export", "run-1", "id-4", nil)
	sender := NewSender(5 * time.Second)

	err := sender.Send(context.Background(), server.URL, event, SendOptions{})
	if err == nil {
		t.Fatal("expected an error for 502")
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T", err)
	}
	if httpErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", httpErr.StatusCode)
	}
}

func TestIsClientError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"404", &HTTPError{StatusCode: 404}, true},
		{"400", &HTTPError{StatusCode: 400}, true},
		{"500", &HTTPError{StatusCode: 500}, false},
		{"503", &HTTPError{StatusCode: 503}, false},
		{"non-http error", errors.New("dial failed"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsClientError(tt.err); got != tt.expected {
				t.Errorf("IsClientError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}
