package auth

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-journal-client/credentials"
	"github.com/jrsteele09/go-journal-client/metrics"
	"github.com/jrsteele09/go-journal-client/sessions"
	"github.com/rs/zerolog"
)

// Default backend routes.
const (
	DefaultLoginPath         = "/users/api/token/"
	DefaultRefreshPath       = "/users/api/token/refresh/"
	DefaultSignupPath        = "/users/signup/"
	DefaultResetPasswordPath = "/users/reset-password/"
	DefaultProfilePath       = "/users/profile/me"
)

const defaultHTTPTimeout = 30 * time.Second

// Endpoints are the backend paths used by the Service, relative to the base
// URL.
type Endpoints struct {
	Login         string
	Refresh       string
	Signup        string
	ResetPassword string
	Profile       string
}

// DefaultEndpoints returns the routes exposed by the journal backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Login:         DefaultLoginPath,
		Refresh:       DefaultRefreshPath,
		Signup:        DefaultSignupPath,
		ResetPassword: DefaultResetPasswordPath,
		Profile:       DefaultProfilePath,
	}
}

// withDefaults fills any empty route with its default.
func (e Endpoints) withDefaults() Endpoints {
	d := DefaultEndpoints()
	if e.Login == "" {
		e.Login = d.Login
	}
	if e.Refresh == "" {
		e.Refresh = d.Refresh
	}
	if e.Signup == "" {
		e.Signup = d.Signup
	}
	if e.ResetPassword == "" {
		e.ResetPassword = d.ResetPassword
	}
	if e.Profile == "" {
		e.Profile = d.Profile
	}
	return e
}

// Params holds the required dependencies of a Service.
type Params struct {
	BaseURL string            // Backend root, e.g. http://localhost:8000
	Store   credentials.Store // Durable token storage
	Session *sessions.Writer  // The only writer of the session state
}

// ServiceOption modifies a Service at construction time.
type ServiceOption func(*Service)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(client *http.Client) ServiceOption {
	return func(s *Service) {
		s.httpClient = client
	}
}

// WithEndpoints overrides backend routes. Empty fields keep their default.
func WithEndpoints(endpoints Endpoints) ServiceOption {
	return func(s *Service) {
		s.endpoints = endpoints.withDefaults()
	}
}

// WithLogger sets the logger used by the service.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics records login and logout counters.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}
