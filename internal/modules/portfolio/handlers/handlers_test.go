package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/stoxy/internal/modules"
	"github.com/aristath/stoxy/internal/modules/portfolio"
	testingpkg "github.com/aristath/stoxy/internal/testing"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "stoxy")
	t.Cleanup(cleanup)

	h := NewHandler(portfolio.NewRepository(db, zerolog.Nop()), zerolog.Nop())
	r := chi.NewRouter()
	r.Use(modules.UserScope(1))
	r.Route("/api", h.RegisterRoutes)
	return r
}

func do(t *testing.T, router http.Handler, method, path, body string, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if userID != "" {
		req.Header.Set(modules.UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetSummary_EmptyObjectWhenMissing(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodGet, "/api/portfolio", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestUpdateSummary_UpsertsPerUser(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodPut, "/api/portfolio",
		`{"total_value": 1000.5, "today_gain": 10, "today_gain_percent": 1, "stocks": 800.5, "crypto": 200}`, "2")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPut, "/api/portfolio",
		`{"total_value": 1200, "today_gain": 0, "today_gain_percent": 0, "stocks": 1000, "crypto": 200}`, "2")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/portfolio", "", "2")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "1200", got["total_value"])
	assert.Equal(t, "1000", got["stocks"])
	assert.EqualValues(t, 2, got["user_id"])

	// user 1 is untouched
	rec = do(t, router, http.MethodGet, "/api/portfolio", "", "1")
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestContainers_CreateListDelete(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodPost, "/api/portfolios", `{"name": "Cartera Principal"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "EUR", created["currency"])
	assert.Equal(t, "0", created["value"])
	id := int64(created["id"].(float64))

	rec = do(t, router, http.MethodGet, "/api/portfolios", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)

	path := "/api/portfolios/" + jsonID(id)
	rec = do(t, router, http.MethodDelete, path, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message": "Portfolio deleted"}`, rec.Body.String())

	rec = do(t, router, http.MethodDelete, path, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateContainer_Validation(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodPost, "/api/portfolios", `{"name": "  "}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/portfolios", `{not json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteContainer_OtherUserIsNotFound(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodPost, "/api/portfolios", `{"name": "Mine"}`, "1")
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = do(t, router, http.MethodDelete, "/api/portfolios/"+jsonID(int64(created["id"].(float64))), "", "3")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserScope_RejectsBadHeader(t *testing.T) {
	router := newRouter(t)

	rec := do(t, router, http.MethodGet, "/api/portfolios", "", "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
