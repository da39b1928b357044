package webserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadmesh/leadgen/internal/lead"
	"github.com/leadmesh/leadgen/internal/webapi"
)

type stubStore struct{}

func (stubStore) Submit(context.Context, lead.Request) (string, error) { return "task-1", nil }
func (stubStore) Get(string) (webapi.Task, bool)                       { return nil, false }

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	srv, err := New(Config{
		Port:      0,
		Store:     stubStore{},
		NoBrowser: true,
	})
	require.NoError(t, err)
	return srv.Handler()
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(Config{Port: 0, NoBrowser: true})
	require.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	err := json.Unmarshal(rec.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "ok", body["status"])
}

func TestStaticServesIndexHTML(t *testing.T) {
	handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!doctype html>")
	assert.Contains(t, rec.Body.String(), "leadgen")
}

func TestStaticFallbackForUnknownPaths(t *testing.T) {
	handler := newTestServer(t)

	// A bookmarked task URL should still load the app.
	req := httptest.NewRequest(http.MethodGet, "/tasks/abc123", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!doctype html>")
}

func TestStaticAssetServing(t *testing.T) {
	handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/favicon.svg", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestAPIRoutesRegistered(t *testing.T) {
	handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/nope", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// 404 from the API handler, not the SPA fallback.
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
