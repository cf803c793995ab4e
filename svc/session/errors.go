package session

import "errors"

var (
	// ErrNotAuthenticated is the Session error after the identity endpoint
	// answered with a non-success status. An expected state, not a fault.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAuthUnavailable is the Session error when the identity endpoint
	// could not be reached at all.
	ErrAuthUnavailable = errors.New("auth error")

	// ErrLoginTimeout is returned when the browser login flow did not
	// receive a callback in time.
	ErrLoginTimeout = errors.New("timed out waiting for login callback")

	// ErrMissingToken is returned when the login callback arrived without
	// a token parameter.
	ErrMissingToken = errors.New("login callback carried no token")
)
