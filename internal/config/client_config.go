package config

import "time"

type ClientConfig interface {
	GetHTTPTimeout() time.Duration
	GetRefreshTimeout() time.Duration
	GetProactiveRefreshLeeway() time.Duration
}

type Client struct{}

var _ ClientConfig = Client{}

func (Client) GetHTTPTimeout() time.Duration {
	return GetDurationEnv("HTTP_TIMEOUT", 30*time.Second)
}

// GetRefreshTimeout bounds one token refresh flight.
func (Client) GetRefreshTimeout() time.Duration {
	return GetDurationEnv("REFRESH_TIMEOUT", 30*time.Second)
}

// GetProactiveRefreshLeeway refreshes JWT access tokens this long before they
// expire. Zero (the default) only refreshes after a 401.
func (Client) GetProactiveRefreshLeeway() time.Duration {
	return GetDurationEnv("PROACTIVE_REFRESH_LEEWAY", 0)
}
