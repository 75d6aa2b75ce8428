// Package sessions holds the in-memory, observable authentication state of the
// single active session.
package sessions

import "errors"

// Status is the authentication status of the session.
type Status int

const (
	// StatusUnknown is the value before the credential store has been
	// consulted.
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// ErrInvalidState is returned when a write would mark the session
// authenticated without an access token.
var ErrInvalidState = errors.New("authenticated session requires an access token")

// State is a consistent snapshot of the session. An empty token is absent.
type State struct {
	AccessToken  string
	RefreshToken string
	Status       Status
}

// Authenticated reports whether the session is known to be logged in.
func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// LoggedOut is the terminal unauthenticated state.
func LoggedOut() State {
	return State{Status: StatusUnauthenticated}
}

// LoggedIn returns an authenticated state for the given tokens.
func LoggedIn(accessToken, refreshToken string) State {
	return State{AccessToken: accessToken, RefreshToken: refreshToken, Status: StatusAuthenticated}
}

func (s State) validate() error {
	if s.Status == StatusAuthenticated && s.AccessToken == "" {
		return ErrInvalidState
	}
	return nil
}
