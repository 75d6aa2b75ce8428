package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-journal-client/apierror"
	"github.com/jrsteele09/go-journal-client/auth"
	"github.com/jrsteele09/go-journal-client/client"
	"github.com/jrsteele09/go-journal-client/credentials"
	credentialrepofake "github.com/jrsteele09/go-journal-client/credentials/repofake"
	"github.com/jrsteele09/go-journal-client/internal/config"
	"github.com/jrsteele09/go-journal-client/internal/devserver"
	"github.com/jrsteele09/go-journal-client/journal"
	"github.com/jrsteele09/go-journal-client/metrics"
	"github.com/jrsteele09/go-journal-client/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

const (
	seedEmail    = "demo@example.com"
	seedPassword = "Passw0rd"
)

type testFixture struct {
	backend *devserver.Server
	http    *httptest.Server
	store   *credentialrepofake.FakeCredentialStore
	metrics *metrics.Metrics
	client  *client.Client
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("SEED_USER_EMAIL", seedEmail)
	t.Setenv("SEED_USER_PASSWORD", seedPassword)

	backend, err := devserver.NewInMemory(config.New())
	require.NoError(t, err)
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)

	f := &testFixture{
		backend: backend,
		http:    ts,
		store:   credentialrepofake.NewFakeCredentialStore(),
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	f.client, err = client.New(client.Params{BaseURL: ts.URL, Store: f.store},
		client.WithMetrics(f.metrics),
		client.WithRefreshTimeout(5*time.Second),
	)
	require.NoError(t, err)
	return f
}

func (f *testFixture) login(t *testing.T) (string, string) {
	t.Helper()
	tok, err := f.client.Auth.Login(context.Background(), seedEmail, seedPassword)
	require.NoError(t, err)
	return tok.AccessToken, tok.RefreshToken
}

func TestExpiredTokenIsRefreshedAndReplayed(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	t1, r := f.login(t)

	_, err := f.client.Journal.CreateEntry(ctx, journal.EntryInput{Title: "Before expiry"})
	require.NoError(t, err)

	f.backend.RevokeAccessTokens()

	entries, err := f.client.Journal.ListEntries(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, f.backend.RefreshCalls())

	state := f.client.Session.Snapshot()
	require.True(t, state.Authenticated())
	require.NotEqual(t, t1, state.AccessToken)
	require.Equal(t, r, state.RefreshToken)
	require.Equal(t, "Bearer "+state.AccessToken, f.backend.LastAuthorization())

	stored, ok := f.store.Value(credentials.AccessTokenKey)
	require.True(t, ok)
	require.Equal(t, state.AccessToken, stored)

	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RefreshAttempts.WithLabelValues(metrics.OutcomeSuccess)))
}

func TestConcurrentUnauthorizedRequestsShareOneRefresh(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.backend.RevokeAccessTokens()
	release := f.backend.HoldRefresh()
	t.Cleanup(release)

	const callers = 10
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.client.Journal.ListCategories(context.Background())
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return f.backend.RefreshCalls() == 1 }, 2*time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	release()
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 1, f.backend.RefreshCalls())
	require.True(t, f.client.Session.Snapshot().Authenticated())
}

// refreshUnreachable fails every call to the refresh endpoint at the
// transport level.
type refreshUnreachable struct{}

func (refreshUnreachable) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Path == devserver.RouteTokenRefresh {
		return nil, errors.New("connection reset by peer")
	}
	return http.DefaultTransport.RoundTrip(req)
}

func TestEarlyRefreshNetworkFailureKeepsValidSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.backend.SetAccessTokenExpiry(30 * time.Second)

	c, err := client.New(client.Params{BaseURL: f.http.URL, Store: f.store},
		client.WithHTTPClient(&http.Client{Transport: refreshUnreachable{}}),
		client.WithMetrics(f.metrics),
		client.WithProactiveRefresh(time.Minute),
	)
	require.NoError(t, err)
	tok, err := c.Auth.Login(ctx, seedEmail, seedPassword)
	require.NoError(t, err)

	resp, err := c.Request(ctx, http.MethodGet, "/journal/entries/", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Zero(t, f.backend.RefreshCalls())
	require.Equal(t, "Bearer "+tok.AccessToken, f.backend.LastAuthorization())

	require.Equal(t, sessions.LoggedIn(tok.AccessToken, tok.RefreshToken), c.Session.Snapshot())
	stored, ok := f.store.Value(credentials.RefreshTokenKey)
	require.True(t, ok)
	require.Equal(t, tok.RefreshToken, stored)
	require.Zero(t, testutil.ToFloat64(f.metrics.Logouts.WithLabelValues(auth.LogoutReasonRefreshFailed)))
}

func TestRefreshFailureLogsOut(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)
	f.backend.RevokeAccessTokens()
	f.backend.FailRefresh(true)

	_, err := f.client.Journal.ListEntries(context.Background(), 0)
	require.ErrorIs(t, err, apierror.ErrAuthentication)

	state := f.client.Session.Snapshot()
	require.Equal(t, sessions.StatusUnauthenticated, state.Status)
	_, ok := f.store.Value(credentials.AccessTokenKey)
	require.False(t, ok)
	_, ok = f.store.Value(credentials.RefreshTokenKey)
	require.False(t, ok)
}

func TestRotatedRefreshTokenIsStored(t *testing.T) {
	f := setupTestFixture(t)
	f.backend.SetRotateRefreshTokens(true)
	_, r1 := f.login(t)
	f.backend.RevokeAccessTokens()

	_, err := f.client.Journal.ListCategories(context.Background())
	require.NoError(t, err)

	r2, ok := f.store.Value(credentials.RefreshTokenKey)
	require.True(t, ok)
	require.NotEqual(t, r1, r2)
	require.Equal(t, r2, f.client.Session.Snapshot().RefreshToken)
}

func TestRestoreSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	state := f.client.RestoreSession(ctx)
	require.Equal(t, sessions.StatusUnauthenticated, state.Status)
	require.Empty(t, f.backend.LastAuthorization())
	require.Zero(t, f.backend.RefreshCalls())

	f.store.Seed("stored-access", "stored-refresh")
	state = f.client.RestoreSession(ctx)
	require.True(t, state.Authenticated())
	require.Equal(t, "stored-access", state.AccessToken)
	require.Zero(t, f.backend.RefreshCalls())
}

func TestRestoredSessionRefreshesOnFirstCall(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	t1, r := f.login(t)

	restarted, err := client.New(client.Params{BaseURL: f.http.URL, Store: f.store})
	require.NoError(t, err)
	require.Equal(t, t1, restarted.RestoreSession(ctx).AccessToken)

	f.backend.RevokeAccessTokens()
	user, err := restarted.Journal.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, seedEmail, user.Email)
	require.Equal(t, r, restarted.Session.Snapshot().RefreshToken)
	require.Equal(t, 1, f.backend.RefreshCalls())
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.login(t)

	require.NoError(t, f.client.Auth.Logout(ctx))
	require.Equal(t, sessions.StatusUnauthenticated, f.client.Session.Snapshot().Status)

	_, err := f.client.Request(ctx, http.MethodGet, devserver.RouteCategories, nil)
	require.ErrorIs(t, err, apierror.ErrAuthentication)
	require.Zero(t, f.backend.RefreshCalls())
}

func TestRequestPassthrough(t *testing.T) {
	f := setupTestFixture(t)
	f.login(t)

	resp, err := f.client.Request(context.Background(), http.MethodGet, devserver.RouteCategories, nil)
	require.NoError(t, err)
	var categories []journal.Category
	require.NoError(t, resp.Decode(&categories))
	require.NotEmpty(t, categories)
	require.NotEmpty(t, resp.RequestID)

	_, err = f.client.Request(context.Background(), http.MethodDelete, "/journal/entries/404/", nil)
	var appErr *apierror.ApplicationError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusNotFound, appErr.StatusCode)
	require.Zero(t, f.backend.RefreshCalls())
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := client.New(client.Params{Store: credentialrepofake.NewFakeCredentialStore()})
	require.ErrorContains(t, err, "BaseURL")
	_, err = client.New(client.Params{BaseURL: "http://localhost"})
	require.ErrorContains(t, err, "Store")
}
