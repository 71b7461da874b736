package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"duonest/config"
	"duonest/middleware"
	"duonest/socket"
	"duonest/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>duonest</h1>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "static"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "static", "app.js"), []byte("console.log(1)"), 0o644))

	cfg := &config.Config{
		Password:       "golden",
		SessionSecret:  []byte("router-test"),
		SessionTTL:     time.Hour,
		StaticDir:      dir,
		CORSOrigins:    []string{"*"},
		LoginPerMinute: 10,
	}
	st := store.New(store.NewFileBackend(filepath.Join(dir, "data", "storage.json")))
	require.NoError(t, st.Init(context.Background()))

	hub := socket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	return Setup(cfg, st, hub)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"password":"golden"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func TestAnonymousRequestsAreGated(t *testing.T) {
	h := newApp(t)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/api/kiss", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, middleware.LoginPath, rec.Header().Get("Location"))

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "console.log(1)", rec.Body.String())
}

func TestKissFlowAfterLogin(t *testing.T) {
	h := newApp(t)
	cookie := login(t, h)

	req := httptest.NewRequest(http.MethodPost, "/api/kiss", strings.NewReader(`{"action":"add"}`))
	req.AddCookie(cookie)
	rec := serve(h, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"count":1}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/api/kiss", nil)
	req.AddCookie(cookie)
	assert.JSONEq(t, `{"success":true,"count":1}`, serve(h, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec = serve(h, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "duonest")

	req = httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	rec = serve(h, req)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestOpsEndpoints(t *testing.T) {
	h := newApp(t)

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	// One request so the counter has a sample.
	serve(h, httptest.NewRequest(http.MethodGet, "/api/kiss", nil))

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestForeignOriginGetsNoCredentialedCORS(t *testing.T) {
	h := newApp(t)
	cookie := login(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/kiss", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.AddCookie(cookie)
	rec := serve(h, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}
