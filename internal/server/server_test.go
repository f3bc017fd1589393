package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stoxy/internal/modules"
	testingpkg "github.com/aristath/stoxy/internal/testing"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "stoxy")
	t.Cleanup(cleanup)

	return New(Config{
		Log:           zerolog.Nop(),
		DB:            db,
		Port:          0,
		DevMode:       true,
		DefaultUserID: 1,
		DataDir:       t.TempDir(),
	})
}

func serve(s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestRoutes_AreMounted(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/api/portfolio", "/api/portfolios", "/api/holdings", "/api/watchlist", "/api/alerts",
		"/api/search?q=apple", "/api/market/indices", "/api/market/movers",
		"/api/crypto/prices", "/api/crypto/top", "/api/news",
	} {
		rec := serve(s, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), path)
	}
}

func TestUserHeaderScopesData(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, http.MethodPost, "/api/holdings",
		`{"symbol": "AAPL", "name": "Apple Inc.", "quantity": 1, "value": 178}`,
		map[string]string{modules.UserIDHeader: "2"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(s, http.MethodGet, "/api/holdings", "", nil)
	assert.JSONEq(t, `[]`, rec.Body.String(), "default user sees nothing")

	rec = serve(s, http.MethodGet, "/api/holdings", "", map[string]string{modules.UserIDHeader: "2"})
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestCORSPreflightAllowsUserHeader(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, http.MethodOptions, "/api/holdings", "", map[string]string{
		"Origin":                         "http://localhost:8080",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": modules.UserIDHeader,
	})

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), "x-user-id")
}

func TestSystemStatus(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, http.MethodGet, "/api/system/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status SystemStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	require.NotNil(t, status.Database)
	assert.Equal(t, "sqlite", status.Database.Driver)
	assert.Greater(t, status.Database.SizeBytes, int64(0))
}

func TestGetDirSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), make([]byte, 1024*1024), 0o644))

	h := NewSystemHandlers(zerolog.Nop(), nil, dir)
	assert.InDelta(t, 1.0, h.getDirSize(dir), 0.001)
}
