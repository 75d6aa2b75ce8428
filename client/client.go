// Package client wires the credential store, session, auth service, refresh
// coordinator and request gateway into one journal client.
package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-journal-client/auth"
	"github.com/jrsteele09/go-journal-client/credentials"
	"github.com/jrsteele09/go-journal-client/gateway"
	"github.com/jrsteele09/go-journal-client/journal"
	"github.com/jrsteele09/go-journal-client/metrics"
	"github.com/jrsteele09/go-journal-client/sessions"
	"github.com/jrsteele09/go-journal-client/token/refresh"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultHTTPTimeout = 30 * time.Second

// Params holds the required dependencies of a Client.
type Params struct {
	BaseURL string            // Backend root, e.g. http://localhost:8000
	Store   credentials.Store // Where the token pair survives restarts
}

type options struct {
	httpClient     *http.Client
	logger         zerolog.Logger
	metrics        *metrics.Metrics
	endpoints      auth.Endpoints
	refreshTimeout time.Duration
	leeway         time.Duration
}

// Option configures a Client.
type Option func(*options)

func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithEndpoints overrides the auth routes. Empty fields keep their defaults.
func WithEndpoints(endpoints auth.Endpoints) Option {
	return func(o *options) {
		o.endpoints = endpoints
	}
}

// WithRefreshTimeout bounds a single refresh flight.
func WithRefreshTimeout(d time.Duration) Option {
	return func(o *options) {
		o.refreshTimeout = d
	}
}

// WithProactiveRefresh refreshes JWT access tokens that expire within leeway
// before sending. Zero disables it.
func WithProactiveRefresh(leeway time.Duration) Option {
	return func(o *options) {
		o.leeway = leeway
	}
}

// Client is a journal client with one session.
type Client struct {
	Auth    *auth.Service
	Session *sessions.Store
	Refresh *refresh.Coordinator
	Gateway *gateway.Gateway
	Journal *journal.Service

	store credentials.Store
}

// New wires a Client. The session starts in sessions.StatusUnknown; call
// RestoreSession to load stored credentials.
func New(params Params, opts ...Option) (*Client, error) {
	if strings.TrimSpace(params.BaseURL) == "" {
		return nil, errors.New("[client.New] BaseURL is required")
	}
	if params.Store == nil {
		return nil, errors.New("[client.New] Store is required")
	}

	o := options{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(&o)
	}

	session, writer := sessions.New()

	authService, err := auth.NewService(auth.Params{
		BaseURL: params.BaseURL,
		Store:   params.Store,
		Session: writer,
	},
		auth.WithHTTPClient(o.httpClient),
		auth.WithEndpoints(o.endpoints),
		auth.WithLogger(o.logger.With().Str("component", "auth").Logger()),
		auth.WithMetrics(o.metrics),
	)
	if err != nil {
		return nil, err
	}

	coordinatorOptions := []refresh.Option{
		refresh.WithLogger(o.logger.With().Str("component", "refresh").Logger()),
		refresh.WithMetrics(o.metrics),
	}
	if o.refreshTimeout > 0 {
		coordinatorOptions = append(coordinatorOptions, refresh.WithTimeout(o.refreshTimeout))
	}
	coordinator, err := refresh.NewCoordinator(refresh.Params{
		Auth:    authService,
		Session: session,
		Store:   params.Store,
	}, coordinatorOptions...)
	if err != nil {
		return nil, err
	}

	gw, err := gateway.New(gateway.Params{
		BaseURL: params.BaseURL,
		Session: session,
		Refresh: coordinator,
	},
		gateway.WithHTTPClient(o.httpClient),
		gateway.WithLogger(o.logger.With().Str("component", "gateway").Logger()),
		gateway.WithMetrics(o.metrics),
		gateway.WithProactiveRefresh(o.leeway),
	)
	if err != nil {
		return nil, err
	}

	return &Client{
		Auth:    authService,
		Session: session,
		Refresh: coordinator,
		Gateway: gw,
		Journal: journal.NewService(gw, journal.WithProfilePath(authService.Endpoints().Profile)),
		store:   params.Store,
	}, nil
}

// RestoreSession loads stored credentials without contacting the backend.
func (c *Client) RestoreSession(ctx context.Context) sessions.State {
	return c.Auth.RestoreSession(ctx)
}

// Request sends an authenticated request through the gateway.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*gateway.Response, error) {
	return c.Gateway.Do(ctx, method, path, body)
}

// Close releases the credential store when it holds a connection.
func (c *Client) Close() error {
	if closer, ok := c.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
