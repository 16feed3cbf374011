package apperrors

import "net/http"

// FromStatus classifies a non-success HTTP status from the remote API.
// Credential problems get their own sentinel so callers can abort early
// instead of treating them like a transient rejection.
func FromStatus(op string, statusCode int, body string) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return Auth(op, statusCode, body)
	default:
		return RemoteRejection(op, statusCode, body)
	}
}
