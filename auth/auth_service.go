// Package auth implements the session lifecycle operations of the journal
// client: login, registration, password reset, logout, session restore and
// the commit half of a token refresh.
//
// The Service is the only holder of the session Writer. Every operation that
// changes the session (login, logout, refresh commit) runs under one mutex and
// writes the credential store and the session state in the same critical
// section, so readers never observe a half-applied change.
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-journal-client/credentials"
	"github.com/jrsteele09/go-journal-client/metrics"
	"github.com/jrsteele09/go-journal-client/oauthmodel"
	"github.com/jrsteele09/go-journal-client/sessions"
	"github.com/jrsteele09/go-journal-client/token"
	"github.com/jrsteele09/go-journal-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Service provides the authentication operations against the journal backend.
type Service struct {
	baseURL    string
	store      credentials.Store
	session    *sessions.Writer
	endpoints  Endpoints
	httpClient *http.Client
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	nowTime    func() time.Time

	mu sync.Mutex // serialises login, logout and refresh commits
}

// NewService initializes a new Service with required dependencies.
// Optional configuration can be provided via options (e.g., WithNowTime for testing).
func NewService(params Params, options ...ServiceOption) (*Service, error) {
	if strings.TrimSpace(params.BaseURL) == "" {
		return nil, errors.New("[NewService] BaseURL is required")
	}
	if params.Store == nil {
		return nil, errors.New("[NewService] credential Store is required")
	}
	if params.Session == nil {
		return nil, errors.New("[NewService] session Writer is required")
	}

	s := &Service{
		baseURL:    params.BaseURL,
		store:      params.Store,
		session:    params.Session,
		endpoints:  DefaultEndpoints(),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     log.Logger,
		nowTime:    time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// Endpoints returns the routes the service was configured with.
func (s *Service) Endpoints() Endpoints {
	return s.endpoints
}

// Login exchanges an email and password for a token pair. On success both
// tokens are stored and the session becomes authenticated. A failure to
// persist the tokens is logged but does not fail the login: the session stays
// usable for the life of the process.
//
// A rejection by the backend is returned as *apierror.ApplicationError and
// leaves the session untouched.
func (s *Service) Login(ctx context.Context, email, password string) (*oauth2.Token, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	body, err := s.postJSON(ctx, s.endpoints.Login, oauthmodel.LoginRequest{Email: email, Password: password})
	if err != nil {
		s.metrics.IncrementLogin(metrics.OutcomeFailure)
		return nil, err
	}

	var tr oauthmodel.TokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		s.metrics.IncrementLogin(metrics.OutcomeFailure)
		return nil, errors.Wrap(err, "[Login] decode token response")
	}
	tok, err := tr.Token()
	if err != nil {
		s.metrics.IncrementLogin(metrics.OutcomeFailure)
		return nil, errors.Wrap(err, "[Login]")
	}
	if tok.RefreshToken == "" {
		s.logger.Warn().Msg("login response carried no refresh token; the session cannot be refreshed")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := credentials.Save(ctx, s.store, credentials.Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist tokens after login")
	}
	if err := s.session.Set(sessions.LoggedIn(tok.AccessToken, tok.RefreshToken)); err != nil {
		return nil, errors.Wrap(err, "[Login] session.Set")
	}

	s.metrics.IncrementLogin(metrics.OutcomeSuccess)
	s.logExpiry(tok.AccessToken, "logged in")
	return tok, nil
}

// Register creates an account. It does not log the user in.
func (s *Service) Register(ctx context.Context, registration users.Registration) (*users.User, error) {
	body, err := s.postJSON(ctx, s.endpoints.Signup, oauthmodel.SignupRequest{
		Email:     registration.Email,
		FirstName: registration.FirstName,
		LastName:  registration.LastName,
		Password:  registration.Password,
	})
	if err != nil {
		return nil, err
	}

	user := &users.User{
		Email:     registration.Email,
		FirstName: registration.FirstName,
		LastName:  registration.LastName,
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, user); err != nil {
			s.logger.Debug().Err(err).Msg("signup response is not a user object")
		}
	}
	return user, nil
}

// ResetPassword sets a new password for the account with the given email and
// returns the backend payload unchanged. The session is not affected.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) (json.RawMessage, error) {
	body, err := s.postJSON(ctx, s.endpoints.ResetPassword, oauthmodel.ResetPasswordRequest{
		Email:       email,
		NewPassword: newPassword,
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Logout ends the session. It is idempotent and always leaves the session
// unauthenticated; credential store failures are returned after the
// in-memory state has been cleared.
func (s *Service) Logout(ctx context.Context) error {
	return s.EndSession(ctx, LogoutReasonUser)
}

// EndSession is Logout with a reason recorded in metrics and logs.
func (s *Service) EndSession(ctx context.Context, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	storeErr := credentials.Clear(ctx, s.store)
	if err := s.session.Set(sessions.LoggedOut()); err != nil {
		return errors.Wrap(err, "[EndSession] session.Set")
	}

	s.metrics.IncrementLogout(reason)
	if storeErr != nil {
		s.logger.Error().Err(storeErr).Str("reason", reason).Msg("logged out but credential store could not be cleared")
		return storeErr
	}
	s.logger.Info().Str("reason", reason).Msg("logged out")
	return nil
}

// RestoreSession rebuilds the session from the credential store. A stored
// access token makes the session authenticated without asking the server;
// the first request that gets a 401 will refresh it. Nothing is sent over the
// network. Unreadable entries are logged and treated as absent.
func (s *Service) RestoreSession(ctx context.Context) sessions.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := credentials.Load(ctx, s.store)
	if err != nil {
		s.logger.Warn().Err(err).Msg("credential store read failed during restore")
	}

	state := sessions.LoggedOut()
	if creds.AccessToken != "" {
		state = sessions.LoggedIn(creds.AccessToken, creds.RefreshToken)
	}
	if err := s.session.Set(state); err != nil {
		s.logger.Error().Err(err).Msg("failed to set restored session")
		return sessions.LoggedOut()
	}

	if state.Authenticated() {
		s.logExpiry(creds.AccessToken, "session restored")
	} else {
		s.logger.Debug().Msg("no stored session")
	}
	return state
}

func (s *Service) logExpiry(accessToken, msg string) {
	claims, err := token.Inspect(accessToken)
	if err != nil || claims.ExpiresAt.IsZero() {
		s.logger.Info().Msg(msg)
		return
	}
	s.logger.Info().
		Time("access_expires_at", claims.ExpiresAt).
		Bool("access_expired", claims.Expired(s.nowTime())).
		Msg(msg)
}
