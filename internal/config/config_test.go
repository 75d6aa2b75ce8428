package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-journal-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("BASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("CREDENTIAL_BACKEND", "")
	t.Setenv("PROACTIVE_REFRESH_LEEWAY", "")

	c := config.New()
	require.Equal(t, "http://localhost:8000", c.GetBaseURL())
	require.Equal(t, ":8000", c.GetPort())
	require.Equal(t, config.BackendFile, c.GetCredentialBackend())
	require.Zero(t, c.GetProactiveRefreshLeeway())
	require.Equal(t, 30*time.Second, c.GetHTTPTimeout())
}

func TestOverrides(t *testing.T) {
	t.Setenv("PORT", ":9000")
	t.Setenv("REFRESH_TIMEOUT", "5s")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "not-a-duration")
	t.Setenv("ROTATE_REFRESH_TOKENS", "true")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("CREDENTIAL_FILE", "/tmp/creds.json")

	c := config.New()
	require.Equal(t, ":9000", c.GetPort())
	require.Equal(t, 5*time.Second, c.GetRefreshTimeout())
	require.Equal(t, 5*time.Minute, c.GetAccessTokenExpiry())
	require.True(t, c.GetRotateRefreshTokens())
	require.True(t, c.GetAllowedOrigins().IsAllowedOrigin("http://b.test"))
	require.False(t, c.GetAllowedOrigins().IsAllowedOrigin("http://c.test"))
	require.Equal(t, "/tmp/creds.json", c.GetCredentialFile())
}
