package credentials_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/go-journal-client/apierror"
	"github.com/jrsteele09/go-journal-client/credentials"
	credentialrepofake "github.com/jrsteele09/go-journal-client/credentials/repofake"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		store := credentialrepofake.NewFakeCredentialStore()
		creds, err := credentials.Load(ctx, store)
		require.NoError(t, err)
		require.True(t, creds.Empty())
	})

	t.Run("both tokens", func(t *testing.T) {
		store := credentialrepofake.NewFakeCredentialStore()
		store.Seed("a1", "r1")
		creds, err := credentials.Load(ctx, store)
		require.NoError(t, err)
		require.Equal(t, credentials.Credentials{AccessToken: "a1", RefreshToken: "r1"}, creds)
	})

	t.Run("read failure is reported and treated as absent", func(t *testing.T) {
		store := credentialrepofake.NewFakeCredentialStore()
		store.Seed("a1", "r1")
		store.FailGet(credentials.AccessTokenKey, true)

		creds, err := credentials.Load(ctx, store)
		require.ErrorIs(t, err, apierror.ErrStorage)
		require.NotContains(t, err.Error(), "a1")
		require.Equal(t, "", creds.AccessToken)
		require.Equal(t, "r1", creds.RefreshToken)
	})
}

func TestSave(t *testing.T) {
	ctx := context.Background()

	t.Run("writes both", func(t *testing.T) {
		store := credentialrepofake.NewFakeCredentialStore()
		require.NoError(t, credentials.Save(ctx, store, credentials.Credentials{AccessToken: "a1", RefreshToken: "r1"}))

		v, ok := store.Value(credentials.AccessTokenKey)
		require.True(t, ok)
		require.Equal(t, "a1", v)
		v, ok = store.Value(credentials.RefreshTokenKey)
		require.True(t, ok)
		require.Equal(t, "r1", v)
	})

	t.Run("rolls back access token when refresh write fails", func(t *testing.T) {
		store := credentialrepofake.NewFakeCredentialStore()
		store.Seed("old-access", "old-refresh")
		store.FailSet(credentials.RefreshTokenKey, true)

		err := credentials.Save(ctx, store, credentials.Credentials{AccessToken: "a2", RefreshToken: "r2"})
		require.ErrorIs(t, err, apierror.ErrStorage)

		v, _ := store.Value(credentials.AccessTokenKey)
		require.Equal(t, "old-access", v)
		v, _ = store.Value(credentials.RefreshTokenKey)
		require.Equal(t, "old-refresh", v)
	})

	t.Run("empty refresh token deletes the key", func(t *testing.T) {
		store := credentialrepofake.NewFakeCredentialStore()
		store.Seed("old-access", "old-refresh")

		require.NoError(t, credentials.Save(ctx, store, credentials.Credentials{AccessToken: "a2"}))
		_, ok := store.Value(credentials.RefreshTokenKey)
		require.False(t, ok)
	})
}

func TestClear(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		store := credentialrepofake.NewFakeCredentialStore()
		store.Seed("a1", "r1")
		require.NoError(t, credentials.Clear(ctx, store))
		require.NoError(t, credentials.Clear(ctx, store))

		creds, err := credentials.Load(ctx, store)
		require.NoError(t, err)
		require.True(t, creds.Empty())
	})

	t.Run("attempts both deletes", func(t *testing.T) {
		store := credentialrepofake.NewFakeCredentialStore()
		store.Seed("a1", "r1")
		store.FailDelete(credentials.AccessTokenKey, true)

		err := credentials.Clear(ctx, store)
		require.ErrorIs(t, err, apierror.ErrStorage)
		_, ok := store.Value(credentials.RefreshTokenKey)
		require.False(t, ok)
	})
}
