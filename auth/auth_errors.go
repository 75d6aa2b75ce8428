package auth

import "errors"

var (
	// ErrSessionChanged is returned by ApplyRefresh when the session was
	// logged out or replaced by a new login while the refresh was in flight.
	ErrSessionChanged = errors.New("session changed during refresh")
	// ErrMissingCredentials is returned by Login before any network call when
	// the email or password is blank.
	ErrMissingCredentials = errors.New("email and password are required")
)

// Logout reasons recorded in metrics.
const (
	LogoutReasonUser           = "user"
	LogoutReasonRefreshFailed  = "refresh_failed"
	LogoutReasonNoRefreshToken = "no_refresh_token"
)
