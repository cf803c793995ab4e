package apiclient

import (
	"errors"
	"fmt"
)

// Classification sentinels. Every terminal failure wraps exactly one of
// these, so callers can branch with errors.Is without parsing messages.
var (
	// ErrSessionExpired marks a 401. The client has already redirected to
	// the login entry by the time this is observable.
	ErrSessionExpired = errors.New("session expired")

	// ErrPermissionDenied marks a 403.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrRateLimited marks a 429. Unlike other 4xx statuses it is retried;
	// see the retry policy notes on Client.
	ErrRateLimited = errors.New("rate limited")

	// ErrServer marks a 5xx response or a transport-level failure.
	ErrServer = errors.New("server error")

	// ErrClient marks any other 4xx response. Never retried.
	ErrClient = errors.New("client error")
)

// RequestError is the terminal failure of one logical request, after any
// retries. Message is the human-readable text shown to the user.
type RequestError struct {
	Kind       error
	Message    string
	StatusCode int
	Attempts   int
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

func (e *RequestError) Unwrap() error { return e.Kind }

// IsRetryable reports whether the failure class is subject to retry.
// Server-class failures always are; 429 is the one retryable 4xx.
func (e *RequestError) IsRetryable() bool {
	return errors.Is(e.Kind, ErrServer) || errors.Is(e.Kind, ErrRateLimited)
}

// IsSessionExpired reports whether err resolves to a 401 redirect.
func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

// IsPermissionDenied reports whether err resolves to a 403.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}

// IsRateLimited reports whether err resolves to a 429.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
