package cli

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-journal-client/client"
	"github.com/jrsteele09/go-journal-client/credentials"
	"github.com/jrsteele09/go-journal-client/internal/config"
	"github.com/jrsteele09/go-journal-client/metrics"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// App lazily builds the client shared by the commands of one invocation.
type App struct {
	config  config.Config
	logger  zerolog.Logger
	metrics *metrics.Metrics
	store   credentials.Store
	client  *client.Client
}

type AppOption func(*App)

// WithStore uses store instead of the configured credential backend.
func WithStore(store credentials.Store) AppOption {
	return func(a *App) {
		a.store = store
	}
}

func WithLogger(logger zerolog.Logger) AppOption {
	return func(a *App) {
		a.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) AppOption {
	return func(a *App) {
		a.metrics = m
	}
}

func NewApp(cfg config.Config, options ...AppOption) *App {
	a := &App{config: cfg, logger: log.Logger}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// Client returns the client, restoring any stored session on first use.
func (a *App) Client(ctx context.Context) (*client.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	if a.store == nil {
		store, err := OpenStore(ctx, a.config)
		if err != nil {
			return nil, err
		}
		a.store = store
	}

	c, err := client.New(client.Params{BaseURL: a.config.GetBaseURL(), Store: a.store},
		client.WithHTTPClient(&http.Client{Timeout: a.config.GetHTTPTimeout()}),
		client.WithLogger(a.logger),
		client.WithMetrics(a.metrics),
		client.WithRefreshTimeout(a.config.GetRefreshTimeout()),
		client.WithProactiveRefresh(a.config.GetProactiveRefreshLeeway()),
	)
	if err != nil {
		return nil, err
	}
	c.RestoreSession(ctx)
	a.client = c
	return c, nil
}

// Close releases the credential store.
func (a *App) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}
