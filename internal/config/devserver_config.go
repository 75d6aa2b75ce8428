package config

import "time"

type DevServerConfig interface {
	GetSigningSecret() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetRotateRefreshTokens() bool
	GetSeedUserEmail() string
	GetSeedUserPassword() string
}

type DevServer struct{}

var _ DevServerConfig = DevServer{}

// GetSigningSecret is the HS256 key of the dev server's tokens.
// Security: Never log this value
func (DevServer) GetSigningSecret() string {
	return GetEnv("DEVSERVER_SIGNING_SECRET", "dev-only-signing-secret")
}

func (DevServer) GetAccessTokenExpiry() time.Duration {
	return GetDurationEnv("ACCESS_TOKEN_EXPIRY", 5*time.Minute)
}

func (DevServer) GetRefreshTokenExpiry() time.Duration {
	return GetDurationEnv("REFRESH_TOKEN_EXPIRY", 24*time.Hour)
}

func (DevServer) GetRotateRefreshTokens() bool {
	return GetBoolEnv("ROTATE_REFRESH_TOKENS", false)
}

func (DevServer) GetSeedUserEmail() string {
	return GetEnv("SEED_USER_EMAIL", "demo@example.com")
}

func (DevServer) GetSeedUserPassword() string {
	return GetEnv("SEED_USER_PASSWORD", "Passw0rd")
}
