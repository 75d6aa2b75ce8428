// Package gateway issues authenticated requests to the journal backend.
//
// Every request carries the session's current access token. A 401 hands the
// rejected token to the refresh coordinator and, if a new token comes back,
// the request is replayed exactly once. Other failures are returned as they
// are, classified into the apierror kinds.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-journal-client/apierror"
	"github.com/jrsteele09/go-journal-client/metrics"
	"github.com/jrsteele09/go-journal-client/sessions"
	"github.com/jrsteele09/go-journal-client/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// RequestIDHeader is set on every outgoing request.
const RequestIDHeader = "X-Request-ID"

const (
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBytes   = 10 << 20
)

// Replay results recorded in metrics.
const (
	replaySuccess       = "success"
	replayUnauthorized  = "unauthorized"
	replayRefreshFailed = "refresh_failed"
	replayError         = "error"
)

// Recoverer obtains a replacement for an access token. Recover is used after
// the backend rejected the token and ends the session when it fails.
// RefreshEarly renews a token that is still accepted and keeps the session
// when it fails.
type Recoverer interface {
	Recover(ctx context.Context, staleToken string) (string, error)
	RefreshEarly(ctx context.Context, currentToken string) (string, error)
}

// SessionReader exposes the current session.
type SessionReader interface {
	Snapshot() sessions.State
}

// Params holds the required dependencies of a Gateway.
type Params struct {
	BaseURL string
	Session SessionReader
	Refresh Recoverer
}

// Gateway sends authenticated requests.
type Gateway struct {
	baseURL    string
	session    SessionReader
	refresh    Recoverer
	httpClient *http.Client
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	leeway     time.Duration
	nowTime    func() time.Time
}

// Option modifies a Gateway at construction time.
type Option func(*Gateway)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		g.httpClient = client
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// WithProactiveRefresh refreshes before sending when the access token is a
// JWT that expires within leeway. Opaque tokens are always sent as they are.
func WithProactiveRefresh(leeway time.Duration) Option {
	return func(g *Gateway) {
		g.leeway = leeway
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(g *Gateway) {
		g.nowTime = nowFunc
	}
}

// New creates a Gateway.
func New(params Params, options ...Option) (*Gateway, error) {
	if strings.TrimSpace(params.BaseURL) == "" {
		return nil, errors.New("[gateway.New] BaseURL is required")
	}
	if params.Session == nil {
		return nil, errors.New("[gateway.New] Session is required")
	}
	if params.Refresh == nil {
		return nil, errors.New("[gateway.New] Refresh is required")
	}

	g := &Gateway{
		baseURL:    strings.TrimRight(params.BaseURL, "/"),
		session:    params.Session,
		refresh:    params.Refresh,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		logger:     log.Logger,
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// Do sends an authenticated request. body is JSON encoded unless it is nil,
// a []byte or a json.RawMessage. The encoded body is kept so the request can
// be replayed after a refresh.
//
// Errors are *apierror.TransportError, *apierror.AuthenticationError or
// *apierror.ApplicationError.
func (g *Gateway) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	logger := g.logger.With().Str("request_id", requestID).Str("method", method).Str("path", path).Logger()

	accessToken := g.session.Snapshot().AccessToken
	accessToken = g.maybeRefreshEarly(ctx, logger, accessToken)

	resp, err := g.send(ctx, method, path, payload, accessToken, requestID)
	if err != nil {
		g.metrics.ObserveRequest(method, 0)
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		g.metrics.ObserveRequest(method, resp.StatusCode)
		return classify(method, path, resp)
	}

	logger.Debug().Msg("access token rejected, recovering")
	fresh, err := g.refresh.Recover(ctx, accessToken)
	if err != nil {
		g.metrics.ObserveRequest(method, resp.StatusCode)
		g.metrics.IncrementReplay(replayRefreshFailed)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &apierror.TransportError{Method: method, Path: path, Err: ctxErr}
		}
		logger.Info().Err(err).Msg("refresh failed, request not replayed")
		return nil, &apierror.AuthenticationError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
			Cause:      err,
		}
	}

	current := g.session.Snapshot()
	if !current.Authenticated() || current.AccessToken == "" {
		g.metrics.ObserveRequest(method, resp.StatusCode)
		g.metrics.IncrementReplay(replayRefreshFailed)
		logger.Info().Msg("session ended before replay, request not replayed")
		return nil, &apierror.AuthenticationError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		}
	}
	if current.AccessToken != fresh {
		logger.Debug().Msg("session token changed after refresh, replaying with the current one")
	}

	replay, err := g.send(ctx, method, path, payload, current.AccessToken, requestID)
	if err != nil {
		g.metrics.ObserveRequest(method, 0)
		g.metrics.IncrementReplay(replayError)
		return nil, err
	}
	g.metrics.ObserveRequest(method, replay.StatusCode)

	if replay.StatusCode == http.StatusUnauthorized {
		g.metrics.IncrementReplay(replayUnauthorized)
		logger.Warn().Msg("replayed request rejected")
		return nil, &apierror.AuthenticationError{
			Method:     method,
			Path:       path,
			StatusCode: replay.StatusCode,
			Body:       replay.Body,
			Replayed:   true,
		}
	}
	if replay.OK() {
		g.metrics.IncrementReplay(replaySuccess)
	} else {
		g.metrics.IncrementReplay(replayError)
	}
	return classify(method, path, replay)
}

// Get is Do with GET and no body.
func (g *Gateway) Get(ctx context.Context, path string) (*Response, error) {
	return g.Do(ctx, http.MethodGet, path, nil)
}

func (g *Gateway) Post(ctx context.Context, path string, body any) (*Response, error) {
	return g.Do(ctx, http.MethodPost, path, body)
}

func (g *Gateway) Put(ctx context.Context, path string, body any) (*Response, error) {
	return g.Do(ctx, http.MethodPut, path, body)
}

func (g *Gateway) Delete(ctx context.Context, path string) (*Response, error) {
	return g.Do(ctx, http.MethodDelete, path, nil)
}

func (g *Gateway) maybeRefreshEarly(ctx context.Context, logger zerolog.Logger, accessToken string) string {
	if g.leeway <= 0 || accessToken == "" {
		return accessToken
	}
	claims, err := token.Inspect(accessToken)
	if err != nil || !claims.ExpiresWithin(g.nowTime(), g.leeway) {
		return accessToken
	}

	fresh, err := g.refresh.RefreshEarly(ctx, accessToken)
	if err != nil {
		logger.Info().Err(err).Msg("early refresh failed, sending the current token")
		return g.session.Snapshot().AccessToken
	}
	return fresh
}

func (g *Gateway) send(ctx context.Context, method, path string, payload []byte, accessToken, requestID string) (*Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.url(path), reader)
	if err != nil {
		return nil, &apierror.TransportError{Method: method, Path: path, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if accessToken != "" {
		(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	httpResp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Warn().Err(err).Str("request_id", requestID).Str("path", path).Msg("request failed")
		return nil, &apierror.TransportError{Method: method, Path: path, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, &apierror.TransportError{Method: method, Path: path, Err: err}
	}

	g.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", httpResp.StatusCode).
		Msg("request sent")

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
		RequestID:  requestID,
	}, nil
}

func (g *Gateway) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return g.baseURL + path
}

func classify(method, path string, resp *Response) (*Response, error) {
	if resp.OK() {
		return resp, nil
	}
	return nil, &apierror.ApplicationError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
	}
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("[gateway] encode request body: %w", err)
	}
	return payload, nil
}
