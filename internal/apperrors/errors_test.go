package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestValidation(t *testing.T) {
	t.Parallel()

	err := Validation("start", "start date is required")

	if !errors.Is(err, ErrValidation) {
		t.Error("expected error to match ErrValidation")
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected error to be *Error")
	}

	if appErr.Field != "start" {
		t.Errorf("expected field 'start', got %q", appErr.Field)
	}

	if appErr.Message != "start date is required" {
		t.Errorf("unexpected message: %q", appErr.Message)
	}
}

func TestAuth(t *testing.T) {
	t.Parallel()

	err := Auth("circleci.createExportJob", http.StatusUnauthorized, "Invalid token provided")

	if !errors.Is(err, ErrAuth) {
		t.Error("expected error to match ErrAuth")
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected error to be *Error")
	}

	if appErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", appErr.StatusCode)
	}

	if appErr.Op != "circleci.createExportJob" {
		t.Errorf("unexpected op: %q", appErr.Op)
	}

	if appErr.Body != "Invalid token provided" {
		t.Errorf("unexpected body: %q", appErr.Body)
	}
}

func TestTransport_PreservesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := Transport("circleci.getExportJob", cause)

	if !errors.Is(err, ErrTransport) {
		t.Error("expected error to match ErrTransport")
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected error to be *Error")
	}

	if appErr.Cause != cause {
		t.Error("expected cause to be preserved")
	}

	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected message to mention cause, got %q", err.Error())
	}
}

func TestMalformedResponse(t *testing.T) {
	t.Parallel()

	cause := errors.New("unexpected end of JSON input")
	err := MalformedResponse("circleci.sharedPlanOrgs", cause)

	if !errors.Is(err, ErrMalformedResponse) {
		t.Error("expected error to match ErrMalformedResponse")
	}

	if errors.Is(err, ErrTransport) {
		t.Error("malformed response must not match ErrTransport")
	}
}

func TestJobFailed(t *testing.T) {
	t.Parallel()

	err := JobFailed("failed", []byte(`{"state":"failed"}`))

	if !errors.Is(err, ErrJobFailed) {
		t.Error("expected error to match ErrJobFailed")
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected error to be *Error")
	}

	if appErr.Body != `{"state":"failed"}` {
		t.Errorf("expected raw payload in body, got %q", appErr.Body)
	}

	if !strings.Contains(appErr.Message, `"failed"`) {
		t.Errorf("expected state in message, got %q", appErr.Message)
	}
}

func TestJobTimedOut(t *testing.T) {
	t.Parallel()

	err := JobTimedOut(30)

	if !errors.Is(err, ErrJobTimedOut) {
		t.Error("expected error to match ErrJobTimedOut")
	}

	if !strings.Contains(err.Error(), "30") {
		t.Errorf("expected attempt count in message, got %q", err.Error())
	}
}

func TestDownloadExhausted(t *testing.T) {
	t.Parallel()

	cause := errors.New("status 503")
	err := DownloadExhausted("https://example.com/a.csv.gz", 3, cause)

	if !errors.Is(err, ErrDownloadExhausted) {
		t.Error("expected error to match ErrDownloadExhausted")
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected error to be *Error")
	}

	if appErr.Cause != cause {
		t.Error("expected cause to be preserved")
	}
}

func TestExtraction(t *testing.T) {
	t.Parallel()

	cause := errors.New("gzip: invalid header")
	err := Extraction("/reports/a.csv.gz", cause)

	if !errors.Is(err, ErrExtraction) {
		t.Error("expected error to match ErrExtraction")
	}

	if !strings.Contains(err.Error(), "/reports/a.csv.gz") {
		t.Errorf("expected path in message, got %q", err.Error())
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	t.Parallel()

	sentinels := []error{
		ErrValidation,
		ErrAuth,
		ErrTransport,
		ErrMalformedResponse,
		ErrRemoteRejection,
		ErrRemoteStatus,
		ErrJobFailed,
		ErrJobTimedOut,
		ErrDownloadExhausted,
		ErrExtraction,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %d matches sentinel %d", i, j)
			}
		}
	}
}

func TestFromStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		statusCode int
		expected   error
	}{
		{http.StatusUnauthorized, ErrAuth},
		{http.StatusForbidden, ErrAuth},
		{http.StatusBadRequest, ErrRemoteRejection},
		{http.StatusNotFound, ErrRemoteRejection},
		{http.StatusTooManyRequests, ErrRemoteRejection},
		{http.StatusInternalServerError, ErrRemoteRejection},
		{http.StatusServiceUnavailable, ErrRemoteRejection},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			t.Parallel()

			err := FromStatus("circleci.createExportJob", tt.statusCode, "body")
			if !errors.Is(err, tt.expected) {
				t.Errorf("status %d: expected %v, got %v", tt.statusCode, tt.expected, err)
			}

			var appErr *Error
			if !errors.As(err, &appErr) {
				t.Fatal("expected error to be *Error")
			}

			if appErr.StatusCode != tt.statusCode {
				t.Errorf("expected status %d recorded, got %d", tt.statusCode, appErr.StatusCode)
			}
		})
	}
}

func TestWrappedErrorChain(t *testing.T) {
	t.Parallel()

	inner := Transport("circleci.getExportJob", errors.New("dial tcp: i/o timeout"))
	outer := RemoteStatus("poll", inner)

	if !errors.Is(outer, ErrRemoteStatus) {
		t.Error("expected outer to match ErrRemoteStatus")
	}

	var appErr *Error
	if !errors.As(outer, &appErr) {
		t.Fatal("expected outer to be *Error")
	}

	if !errors.Is(appErr.Cause, ErrTransport) {
		t.Error("expected cause to match ErrTransport")
	}
}
