package devserver_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-journal-client/internal/config"
	"github.com/jrsteele09/go-journal-client/internal/devserver"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	seedEmail    = "demo@example.com"
	seedPassword = "Passw0rd"
)

type testFixture struct {
	server *devserver.Server
	http   *httptest.Server
}

func setupTestFixture(t *testing.T, options ...devserver.Option) *testFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("SEED_USER_EMAIL", seedEmail)
	t.Setenv("SEED_USER_PASSWORD", seedPassword)

	srv, err := devserver.NewInMemory(config.New(), options...)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return &testFixture{server: srv, http: ts}
}

func (f *testFixture) do(t *testing.T, method, path, token string, body any) (int, map[string]any, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.http.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var obj map[string]any
	_ = json.Unmarshal(raw, &obj)
	return resp.StatusCode, obj, raw
}

func (f *testFixture) login(t *testing.T) (string, string) {
	t.Helper()
	status, body, _ := f.do(t, http.MethodPost, devserver.RouteToken, "", map[string]string{"email": seedEmail, "password": seedPassword})
	require.Equal(t, http.StatusOK, status)
	return body["access"].(string), body["refresh"].(string)
}

func TestLogin(t *testing.T) {
	f := setupTestFixture(t)

	access, refresh := f.login(t)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	status, body, _ := f.do(t, http.MethodPost, devserver.RouteToken, "", map[string]string{"email": seedEmail, "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "No active account found with the given credentials", body["detail"])

	status, body, _ = f.do(t, http.MethodPost, devserver.RouteToken, "", map[string]string{"email": seedEmail})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body, "password")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := setupTestFixture(t)

	status, body, _ := f.do(t, http.MethodGet, devserver.RouteProfile, "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Authentication credentials were not provided.", body["detail"])

	status, body, _ = f.do(t, http.MethodGet, devserver.RouteProfile, "garbage", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "token_not_valid", body["code"])

	access, _ := f.login(t)
	status, body, _ = f.do(t, http.MethodGet, devserver.RouteProfile, access, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, seedEmail, body["email"])
	require.Equal(t, "Bearer "+access, f.server.LastAuthorization())
}

func TestRevokedAndExpiredTokens(t *testing.T) {
	var now atomic.Int64
	now.Store(time.Now().UnixNano())
	f := setupTestFixture(t, devserver.WithNowTime(func() time.Time { return time.Unix(0, now.Load()) }))

	access, _ := f.login(t)
	f.server.RevokeAccessTokens()
	status, _, _ := f.do(t, http.MethodGet, devserver.RouteCategories, access, nil)
	require.Equal(t, http.StatusUnauthorized, status)

	f.server.SetAccessTokenExpiry(time.Second)
	access, _ = f.login(t)
	status, _, _ = f.do(t, http.MethodGet, devserver.RouteCategories, access, nil)
	require.Equal(t, http.StatusOK, status)

	now.Add(int64(time.Minute))
	status, _, _ = f.do(t, http.MethodGet, devserver.RouteCategories, access, nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestRefresh(t *testing.T) {
	f := setupTestFixture(t)
	access, refresh := f.login(t)

	status, body, _ := f.do(t, http.MethodPost, devserver.RouteTokenRefresh, "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, status)
	require.NotEqual(t, access, body["access"])
	require.NotContains(t, body, "refresh")
	require.Equal(t, 1, f.server.RefreshCalls())

	status, body, _ = f.do(t, http.MethodPost, devserver.RouteTokenRefresh, "", map[string]string{"refresh": "unknown"})
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "token_not_valid", body["code"])

	f.server.FailRefresh(true)
	status, _, _ = f.do(t, http.MethodPost, devserver.RouteTokenRefresh, "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestRefresh_Rotation(t *testing.T) {
	f := setupTestFixture(t)
	f.server.SetRotateRefreshTokens(true)
	_, refresh := f.login(t)

	status, body, _ := f.do(t, http.MethodPost, devserver.RouteTokenRefresh, "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusOK, status)
	rotated, ok := body["refresh"].(string)
	require.True(t, ok)
	require.NotEqual(t, refresh, rotated)

	status, _, _ = f.do(t, http.MethodPost, devserver.RouteTokenRefresh, "", map[string]string{"refresh": refresh})
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestRefresh_Hold(t *testing.T) {
	f := setupTestFixture(t)
	_, refresh := f.login(t)
	release := f.server.HoldRefresh()

	done := make(chan int, 1)
	go func() {
		resp, err := http.Post(f.http.URL+devserver.RouteTokenRefresh, "application/json", strings.NewReader(`{"refresh":"`+refresh+`"}`))
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()

	require.Eventually(t, func() bool { return f.server.RefreshCalls() == 1 }, time.Second, time.Millisecond)
	select {
	case <-done:
		t.Fatal("refresh returned while held")
	case <-time.After(20 * time.Millisecond):
	}
	release()
	require.Equal(t, http.StatusOK, <-done)
}

func TestSignupAndResetPassword(t *testing.T) {
	f := setupTestFixture(t)
	signup := map[string]string{"email": "jane@example.com", "first_name": "Jane", "last_name": "Doe", "password": "Secr3tPass"}

	status, body, _ := f.do(t, http.MethodPost, devserver.RouteSignup, "", signup)
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "Jane", body["first_name"])

	status, body, _ = f.do(t, http.MethodPost, devserver.RouteSignup, "", signup)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body, "email")

	signup["email"], signup["password"] = "weak@example.com", "short"
	status, body, _ = f.do(t, http.MethodPost, devserver.RouteSignup, "", signup)
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body, "password")

	status, _, _ = f.do(t, http.MethodPost, devserver.RouteResetPassword, "", map[string]string{"email": "jane@example.com", "new_password": "N3wPassword"})
	require.Equal(t, http.StatusOK, status)
	status, _, _ = f.do(t, http.MethodPost, devserver.RouteToken, "", map[string]string{"email": "jane@example.com", "password": "N3wPassword"})
	require.Equal(t, http.StatusOK, status)

	status, _, _ = f.do(t, http.MethodPost, devserver.RouteResetPassword, "", map[string]string{"email": "nobody@example.com", "new_password": "N3wPassword"})
	require.Equal(t, http.StatusNotFound, status)
}

func TestJournalRoutes(t *testing.T) {
	f := setupTestFixture(t)
	access, _ := f.login(t)

	status, _, raw := f.do(t, http.MethodGet, devserver.RouteCategories, access, nil)
	require.Equal(t, http.StatusOK, status)
	var categories []map[string]any
	require.NoError(t, json.Unmarshal(raw, &categories))
	require.Len(t, categories, 3)

	status, created, _ := f.do(t, http.MethodPost, devserver.RouteEntries, access, map[string]any{"title": "Day one", "content": "Hello", "category_id": 2})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, "Work", created["category"].(map[string]any)["name"])
	require.NotEmpty(t, created["created_at"])

	status, body, _ := f.do(t, http.MethodPost, devserver.RouteEntries, access, map[string]any{"title": "Bad", "category_id": 99})
	require.Equal(t, http.StatusBadRequest, status)
	require.Contains(t, body, "category_id")

	status, _, raw = f.do(t, http.MethodGet, "/journal/entries/category/2/", access, nil)
	require.Equal(t, http.StatusOK, status)
	var entries []map[string]any
	require.NoError(t, json.Unmarshal(raw, &entries))
	require.Len(t, entries, 1)

	status, updated, _ := f.do(t, http.MethodPut, "/journal/entries/1/", access, map[string]any{"title": "Day one, edited"})
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Day one, edited", updated["title"])

	status, _, _ = f.do(t, http.MethodDelete, "/journal/entries/1/", access, nil)
	require.Equal(t, http.StatusNoContent, status)
	status, _, _ = f.do(t, http.MethodDelete, "/journal/entries/1/", access, nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _, raw = f.do(t, http.MethodGet, devserver.RouteEntries, access, nil)
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `[]`, string(raw))
}

func TestCorsPreflight(t *testing.T) {
	f := setupTestFixture(t)

	req, err := http.NewRequest(http.MethodOptions, f.http.URL+devserver.RouteEntries, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:8081")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "http://localhost:8081", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "X-Request-ID")
}

func TestHandlerPanicIsLogged(t *testing.T) {
	var logs bytes.Buffer
	f := setupTestFixture(t, devserver.WithLogger(zerolog.New(&logs)))
	f.server.RegisterRouteFunc("GET /boom/", devserver.ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, f.server.APIMiddleware()...))

	status, body, _ := f.do(t, http.MethodGet, "/boom/", "", nil)
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, "Internal server error.", body["detail"])

	require.Contains(t, logs.String(), `"message":"handler panic"`)
	require.Contains(t, logs.String(), `"panic":"boom"`)
	require.Contains(t, logs.String(), `"path":"/boom/"`)
}
