package credentials

import (
	"context"
	"errors"
)

// Key names a stored credential.
type Key string

const (
	AccessTokenKey  Key = "access"
	RefreshTokenKey Key = "refresh"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("credential not found")

// Store is a scoped, secure key-value store for the session tokens.
// Every call acquires and releases whatever it needs; no lock is held between
// calls. Implementations must be safe for concurrent use and must never put a
// stored value into an error or a log line.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key Key) (string, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key Key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key Key) error
}
