// Package apperrors provides structured application errors for the export run.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification via errors.Is().
//
// Validation, auth, transport, malformed-response, and remote-rejection
// errors occur while talking to the API. Job-failed and job-timed-out are
// terminal poll outcomes; remote-status marks a status query that itself
// failed mid-poll, which is a different thing from the job failing.
// Download-exhausted and extraction errors are local to a single artifact
// and never abort a run.
var (
	ErrValidation        = errors.New("validation error")
	ErrAuth              = errors.New("authentication rejected")
	ErrTransport         = errors.New("transport error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrRemoteRejection   = errors.New("rejected by remote")
	ErrRemoteStatus      = errors.New("status query failed")
	ErrJobFailed         = errors.New("export job failed")
	ErrJobTimedOut       = errors.New("export job timed out")
	ErrDownloadExhausted = errors.New("download retries exhausted")
	ErrExtraction        = errors.New("extraction error")
)

// Error provides structured error with context.
type Error struct {
	Sentinel   error  // Wrapped sentinel for errors.Is() classification
	Message    string // Human-readable message
	Field      string // For validation errors (e.g., "start", "sharedOrgIds")
	Op         string // Operation that failed (e.g., "circleci.createExportJob")
	StatusCode int    // HTTP status for remote rejections, 0 otherwise
	Body       string // Response body or raw diagnostic payload, if any
	Cause      error  // Underlying error
}

// Error returns the human-readable error message.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the sentinel error for errors.Is() classification.
func (e *Error) Unwrap() error {
	return e.Sentinel
}

// Validation creates a validation error for a specific field.
func Validation(field, message string) error {
	return &Error{
		Sentinel: ErrValidation,
		Message:  message,
		Field:    field,
	}
}

// Auth creates an error for a request rejected as unauthenticated or forbidden.
func Auth(op string, statusCode int, body string) error {
	return &Error{
		Sentinel:   ErrAuth,
		Message:    fmt.Sprintf("%s: credential rejected with status %d", op, statusCode),
		Op:         op,
		StatusCode: statusCode,
		Body:       body,
	}
}

// Transport creates an error for a network-level request failure.
func Transport(op string, cause error) error {
	return &Error{
		Sentinel: ErrTransport,
		Message:  fmt.Sprintf("%s: %v", op, cause),
		Op:       op,
		Cause:    cause,
	}
}

// MalformedResponse creates an error for a success status with an unusable body.
func MalformedResponse(op string, cause error) error {
	return &Error{
		Sentinel: ErrMalformedResponse,
		Message:  fmt.Sprintf("%s: %v", op, cause),
		Op:       op,
		Cause:    cause,
	}
}

// RemoteRejection creates an error for an unexpected non-success status.
func RemoteRejection(op string, statusCode int, body string) error {
	return &Error{
		Sentinel:   ErrRemoteRejection,
		Message:    fmt.Sprintf("%s: unexpected status %d: %s", op, statusCode, body),
		Op:         op,
		StatusCode: statusCode,
		Body:       body,
	}
}

// RemoteStatus creates an error for a status query that failed mid-poll.
func RemoteStatus(op string, cause error) error {
	return &Error{
		Sentinel: ErrRemoteStatus,
		Message:  fmt.Sprintf("%s: %v", op, cause),
		Op:       op,
		Cause:    cause,
	}
}

// JobFailed creates an error for a job that reached a terminal non-completed state.
func JobFailed(state string, raw []byte) error {
	return &Error{
		Sentinel: ErrJobFailed,
		Message:  fmt.Sprintf("export job finished with state %q", state),
		Body:     string(raw),
	}
}

// JobTimedOut creates an error for a poll budget exhausted while still processing.
func JobTimedOut(attempts int) error {
	return &Error{
		Sentinel: ErrJobTimedOut,
		Message:  fmt.Sprintf("export job still processing after %d status checks", attempts),
	}
}

// DownloadExhausted creates an error for a URL that failed every download attempt.
func DownloadExhausted(url string, attempts int, cause error) error {
	return &Error{
		Sentinel: ErrDownloadExhausted,
		Message:  fmt.Sprintf("failed to download %s after %d attempts: %v", url, attempts, cause),
		Cause:    cause,
	}
}

// Extraction creates an error for a decompression failure.
func Extraction(path string, cause error) error {
	return &Error{
		Sentinel: ErrExtraction,
		Message:  fmt.Sprintf("failed to extract %s: %v", path, cause),
		Cause:    cause,
	}
}
