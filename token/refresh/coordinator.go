// Package refresh coordinates access token renewal for the request gateway.
//
// However many requests fail authentication at the same time, at most one
// refresh call is in flight. Every request that hits a 401 while a refresh is
// running waits for that refresh and shares its outcome.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/go-journal-client/auth"
	"github.com/jrsteele09/go-journal-client/credentials"
	"github.com/jrsteele09/go-journal-client/metrics"
	"github.com/jrsteele09/go-journal-client/sessions"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// ErrNoRefreshToken is returned when the credential store holds no refresh
// token. The session has been logged out by the time it is returned.
var ErrNoRefreshToken = errors.New("no refresh token available")

// ErrEarlyRefreshFailed wraps the failure of a RefreshEarly flight. The
// session is left as it was.
var ErrEarlyRefreshFailed = errors.New("early refresh failed")

const (
	flightKey             = "refresh"
	defaultRefreshTimeout = 30 * time.Second
	logoutTimeout         = 5 * time.Second
)

// Authenticator is the part of auth.Service the coordinator drives.
type Authenticator interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	ApplyRefresh(ctx context.Context, usedRefreshToken string, tok *oauth2.Token) error
	EndSession(ctx context.Context, reason string) error
}

var _ Authenticator = (*auth.Service)(nil)

// SessionReader exposes the current session.
type SessionReader interface {
	Snapshot() sessions.State
}

// Params holds the required dependencies of a Coordinator.
type Params struct {
	Auth    Authenticator
	Session SessionReader
	Store   credentials.Store
}

// Coordinator serialises token refreshes.
type Coordinator struct {
	auth    Authenticator
	session SessionReader
	store   credentials.Store
	timeout time.Duration
	logger  zerolog.Logger
	metrics *metrics.Metrics

	group singleflight.Group
	state atomic.Int32
}

// Option modifies a Coordinator at construction time.
type Option func(*Coordinator)

// WithTimeout bounds a single refresh flight (default 30s). The bound applies
// to the flight, not to the callers waiting on it.
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.timeout = d
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// NewCoordinator creates an idle coordinator.
func NewCoordinator(params Params, options ...Option) (*Coordinator, error) {
	if params.Auth == nil {
		return nil, errors.New("[NewCoordinator] Auth is required")
	}
	if params.Session == nil {
		return nil, errors.New("[NewCoordinator] Session is required")
	}
	if params.Store == nil {
		return nil, errors.New("[NewCoordinator] Store is required")
	}

	c := &Coordinator{
		auth:    params.Auth,
		session: params.Session,
		store:   params.Store,
		timeout: defaultRefreshTimeout,
		logger:  log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// State returns the current refresh state.
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Recover is called after staleToken was rejected with a 401. It returns the
// access token to replay the request with.
//
// If the session already holds a different token, a refresh has completed
// since the request was sent and that token is returned straight away.
// Otherwise the caller joins the running refresh, or starts one. The refresh
// itself is not cancelled by ctx: a caller that gives up only stops waiting.
// A failed refresh ends the session.
func (c *Coordinator) Recover(ctx context.Context, staleToken string) (string, error) {
	tok, err := c.join(ctx, staleToken, true)
	if errors.Is(err, ErrEarlyRefreshFailed) {
		// The joined flight was started by RefreshEarly and kept the session.
		// A rejected token needs a flight of its own.
		tok, err = c.join(ctx, staleToken, true)
	}
	return tok, err
}

// RefreshEarly renews currentToken before the backend has rejected it. It
// shares the flight with Recover, but a failure leaves the session alone and
// is returned wrapped in ErrEarlyRefreshFailed.
func (c *Coordinator) RefreshEarly(ctx context.Context, currentToken string) (string, error) {
	return c.join(ctx, currentToken, false)
}

func (c *Coordinator) join(ctx context.Context, staleToken string, endOnFailure bool) (string, error) {
	if tok, ok := c.fresherThan(staleToken); ok {
		c.metrics.IncrementRefresh(metrics.OutcomeAlreadyFresh)
		return tok, nil
	}

	if c.State() != StateIdle {
		c.metrics.IncrementRefreshJoins()
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flightKey, func() (any, error) {
		return c.refresh(flightCtx, staleToken, endOnFailure)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Coordinator) refresh(ctx context.Context, staleToken string, endOnFailure bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.state.Store(int32(StateRefreshing))
	defer c.state.Store(int32(StateIdle))

	if tok, ok := c.fresherThan(staleToken); ok {
		c.metrics.IncrementRefresh(metrics.OutcomeAlreadyFresh)
		return tok, nil
	}

	refreshToken, err := credentials.RefreshToken(ctx, c.store)
	if err != nil {
		c.logger.Warn().Err(err).Msg("refresh token unreadable")
	}
	if refreshToken == "" {
		c.metrics.IncrementRefresh(metrics.OutcomeNoRefreshToken)
		if !endOnFailure {
			return "", fmt.Errorf("%w: %w", ErrEarlyRefreshFailed, ErrNoRefreshToken)
		}
		c.fail(ctx, auth.LogoutReasonNoRefreshToken)
		return "", ErrNoRefreshToken
	}

	tok, err := c.auth.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		c.logger.Warn().Err(err).Msg("token refresh rejected")
		c.metrics.IncrementRefresh(metrics.OutcomeFailure)
		if !endOnFailure {
			return "", fmt.Errorf("%w: %w", ErrEarlyRefreshFailed, err)
		}
		c.fail(ctx, auth.LogoutReasonRefreshFailed)
		return "", err
	}

	if err := c.auth.ApplyRefresh(ctx, refreshToken, tok); err != nil {
		if errors.Is(err, auth.ErrSessionChanged) {
			c.logger.Info().Msg("session changed during refresh; result discarded")
			if current, ok := c.fresherThan(staleToken); ok {
				return current, nil
			}
			return "", err
		}
		c.logger.Error().Err(err).Msg("refreshed token could not be persisted")
	}

	c.metrics.IncrementRefresh(metrics.OutcomeSuccess)
	return tok.AccessToken, nil
}

// fail moves to StateFailed and ends the session. The deferred reset in
// refresh returns the coordinator to StateIdle afterwards.
func (c *Coordinator) fail(ctx context.Context, reason string) {
	c.state.Store(int32(StateFailed))

	// The flight deadline may already have passed.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
	defer cancel()
	if err := c.auth.EndSession(ctx, reason); err != nil {
		c.logger.Error().Err(err).Str("reason", reason).Msg("forced logout could not clear stored credentials")
	}
}

func (c *Coordinator) fresherThan(staleToken string) (string, bool) {
	current := c.session.Snapshot()
	if current.Authenticated() && current.AccessToken != "" && current.AccessToken != staleToken {
		return current.AccessToken, true
	}
	return "", false
}
