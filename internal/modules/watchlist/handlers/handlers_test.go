package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stoxy/internal/modules"
	"github.com/aristath/stoxy/internal/modules/watchlist"
	testingpkg "github.com/aristath/stoxy/internal/testing"
)

func setup(t *testing.T) http.Handler {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "stoxy")
	t.Cleanup(cleanup)

	h := NewHandler(watchlist.NewRepository(db, zerolog.Nop()), zerolog.Nop())
	r := chi.NewRouter()
	r.Use(modules.UserScope(1))
	r.Route("/api", h.RegisterRoutes)
	return r
}

func request(router http.Handler, method, path, body, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req.Header.Set(modules.UserIDHeader, user)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const nvda = `{"symbol": "NVDA", "name": "NVIDIA", "price": "495.22", "change": 26.6, "change_percent": 5.67}`

func TestAddListRemove(t *testing.T) {
	router := setup(t)

	rec := request(router, http.MethodPost, "/api/watchlist", nvda, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "495.22", created["price"])

	rec = request(router, http.MethodGet, "/api/watchlist", "", "")
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "NVDA", list[0]["symbol"])

	path := fmt.Sprintf("/api/watchlist/%v", created["id"])
	rec = request(router, http.MethodDelete, path, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "Removed from watchlist"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, request(router, http.MethodDelete, path, "", "").Code)
}

func TestAdd_DuplicateSymbolIsServerError(t *testing.T) {
	router := setup(t)

	require.Equal(t, http.StatusCreated, request(router, http.MethodPost, "/api/watchlist", nvda, "").Code)

	rec := request(router, http.MethodPost, "/api/watchlist", nvda, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)

	// another user may watch the same symbol
	assert.Equal(t, http.StatusCreated, request(router, http.MethodPost, "/api/watchlist", nvda, "2").Code)
}

func TestAdd_Validation(t *testing.T) {
	router := setup(t)

	assert.Equal(t, http.StatusBadRequest,
		request(router, http.MethodPost, "/api/watchlist", `{"symbol": "NVDA"}`, "").Code)
}

func TestList_ScopedByUser(t *testing.T) {
	router := setup(t)

	require.Equal(t, http.StatusCreated, request(router, http.MethodPost, "/api/watchlist", nvda, "2").Code)

	rec := request(router, http.MethodGet, "/api/watchlist", "", "1")
	assert.JSONEq(t, `[]`, rec.Body.String())
}
