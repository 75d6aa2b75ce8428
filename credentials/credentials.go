// Package credentials persists the access and refresh tokens of the single
// active session.
package credentials

import (
	"context"
	"errors"

	"github.com/jrsteele09/go-journal-client/apierror"
)

// Credentials is the pair of tokens held by a Store. An empty string means
// the token is absent.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// Empty reports whether neither token is present.
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// Load reads both tokens. A missing key is not an error. A failing key is
// reported as a *apierror.StorageError and treated as absent, so the returned
// Credentials are always usable.
func Load(ctx context.Context, store Store) (Credentials, error) {
	access, accessErr := get(ctx, store, AccessTokenKey)
	refresh, refreshErr := get(ctx, store, RefreshTokenKey)
	return Credentials{AccessToken: access, RefreshToken: refresh}, errors.Join(accessErr, refreshErr)
}

// RefreshToken reads the refresh token alone. It returns "" when the token is
// absent or unreadable; the error is only informative.
func RefreshToken(ctx context.Context, store Store) (string, error) {
	return get(ctx, store, RefreshTokenKey)
}

// Save writes both tokens as one unit: if the second write fails the first is
// rolled back to its previous value.
func Save(ctx context.Context, store Store, creds Credentials) error {
	previous, _ := get(ctx, store, AccessTokenKey)

	if err := set(ctx, store, AccessTokenKey, creds.AccessToken); err != nil {
		return err
	}
	if err := set(ctx, store, RefreshTokenKey, creds.RefreshToken); err != nil {
		return errors.Join(err, set(ctx, store, AccessTokenKey, previous))
	}
	return nil
}

// SaveAccessToken replaces the access token and leaves the refresh token alone.
func SaveAccessToken(ctx context.Context, store Store, accessToken string) error {
	return set(ctx, store, AccessTokenKey, accessToken)
}

// Clear deletes both tokens. Both deletes are attempted even if the first one
// fails.
func Clear(ctx context.Context, store Store) error {
	return errors.Join(
		del(ctx, store, AccessTokenKey),
		del(ctx, store, RefreshTokenKey),
	)
}

func get(ctx context.Context, store Store, key Key) (string, error) {
	value, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", storageError("get", key, err)
	}
	return value, nil
}

// set treats an empty value as a delete so absent tokens never linger as
// empty strings.
func set(ctx context.Context, store Store, key Key, value string) error {
	if value == "" {
		return del(ctx, store, key)
	}
	if err := store.Set(ctx, key, value); err != nil {
		return storageError("set", key, err)
	}
	return nil
}

func del(ctx context.Context, store Store, key Key) error {
	if err := store.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		return storageError("delete", key, err)
	}
	return nil
}

func storageError(op string, key Key, err error) error {
	var se *apierror.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &apierror.StorageError{Op: op, Key: string(key), Err: err}
}
