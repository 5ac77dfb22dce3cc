package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/app"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/app/apptest"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-inventory-go/pkg/utilities"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	a := apptest.New(t, app.Options{RequireLanguage: true})
	srv := httptest.NewServer(RegisterRoutes(Deps{
		App:             a,
		Logger:          zaptest.NewLogger(t).Sugar(),
		Metrics:         metrics.New(),
		IDs:             utilities.NewIDGenerator(1),
		DefaultLanguage: "es",
	}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+Prefix+path, strings.NewReader(body))
	require.NoError(t, err)
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, raw
}

const carlos = `{"firstname":"Carlos","lastname":"Pérez","email":"c@p.com","username":"carlosperez","password":"123456"}`

func TestHealthAndHeaders(t *testing.T) {
	srv := newServer(t)
	res, body := do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", string(body))
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
	assert.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))
}

func TestUserEndpoints(t *testing.T) {
	srv := newServer(t)

	res, body := do(t, srv, http.MethodPost, "/users", carlos)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))
	var created map[string]any
	require.NoError(t, json.Unmarshal(body, &created))
	assert.EqualValues(t, 1, created["id"])
	assert.Equal(t, "es", created["language"])
	assert.NotContains(t, created, "password")

	res, body = do(t, srv, http.MethodPost, "/users", carlos)
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	var rejected struct {
		Errors []struct {
			Field string `json:"field"`
			Code  string `json:"code"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(body, &rejected))
	require.Len(t, rejected.Errors, 2)
	assert.Equal(t, "repeated_email", rejected.Errors[0].Code)
	assert.Equal(t, "repeated_username", rejected.Errors[1].Code)

	res, _ = do(t, srv, http.MethodGet, "/users/99", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = do(t, srv, http.MethodGet, "/users/abc", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = do(t, srv, http.MethodPost, "/users", `{"firstname":`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, _ = do(t, srv, http.MethodPost, "/login", `{"identifier":"c@p.com","password":"123456"}`)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = do(t, srv, http.MethodPost, "/login", `{"identifier":"carlosperez","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = do(t, srv, http.MethodDelete, "/users/99", "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestInventoryEndpoints(t *testing.T) {
	srv := newServer(t)
	res, body := do(t, srv, http.MethodPost, "/users", carlos)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))
	res, body = do(t, srv, http.MethodPost, "/locations", `{"owner_id":1,"description":"Garage"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))
	res, body = do(t, srv, http.MethodPost, "/items", `{"owner_id":1,"location_id":1,"description":"Drill","quantity":"abc"}`)
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode, string(body))
	res, body = do(t, srv, http.MethodPost, "/items", `{"owner_id":1,"location_id":1,"description":"Drill","quantity":2}`)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))

	res, body = do(t, srv, http.MethodGet, "/items/1?populate=owner,location", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var it map[string]any
	require.NoError(t, json.Unmarshal(body, &it))
	assert.EqualValues(t, 2, it["quantity"])
	owner := it["owner"].(map[string]any)
	assert.NotContains(t, owner, "password")
	assert.Equal(t, "Garage", it["location"].(map[string]any)["description"])

	res, body = do(t, srv, http.MethodGet, "/users/1/items", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "Drill")
	res, body = do(t, srv, http.MethodGet, "/users/1/locations", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "Garage")

	res, _ = do(t, srv, http.MethodDelete, "/locations/1", "")
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	res, _ = do(t, srv, http.MethodPost, "/items/1/usage/begin", "")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	res, body = do(t, srv, http.MethodGet, "/items/1/usages", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `"in_use":true`)
	res, _ = do(t, srv, http.MethodPost, "/items/1/usage/begin", "")
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	res, _ = do(t, srv, http.MethodPost, "/items/1/usage/end", "")
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res, _ = do(t, srv, http.MethodDelete, "/items/1", "")
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode, "usage history blocks deletion")

	res, body = do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), `inventory_validation_errors_total{code="delete_foreign_key"} 2`)
	assert.Contains(t, string(body), `inventory_http_requests_total{method="POST",route="POST /inventory-api/items",status="201"} 1`)
}
