package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/records-api/internal/utils/response"
)

func echo(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = response.WriteJSON(w, http.StatusOK, map[string]string{
			"handler": name,
			"id":      r.PathValue("id"),
		})
	}
}

func newTestRouter() *Router {
	rt := New()
	rt.HandleFunc(http.MethodGet, "/records", echo("list"))
	rt.HandleFunc(http.MethodGet, "/records/{id}", echo("get"))
	rt.HandleFunc(http.MethodDelete, "/records/{id}", echo("delete"))
	return rt
}

func TestRouter_Dispatch(t *testing.T) {
	rt := newTestRouter()

	tests := []struct {
		method, path string
		handler, id  string
	}{
		{http.MethodGet, "/records", "list", ""},
		{http.MethodGet, "/records/7", "get", "7"},
		{http.MethodDelete, "/records/7", "delete", "7"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			rt.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			require.Equal(t, http.StatusOK, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.handler, body["handler"])
			assert.Equal(t, tt.id, body["id"])
		})
	}
}

func TestRouter_NotFound(t *testing.T) {
	rt := newTestRouter()

	tests := []struct {
		name, method, path string
	}{
		{"unknown path", http.MethodGet, "/users"},
		{"wrong method on known path", http.MethodPut, "/records/1"},
		{"unregistered method on collection", http.MethodDelete, "/records"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			rt.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, http.StatusNotFound, w.Code)
			var body response.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, response.StatusError, body.Status)
			assert.Contains(t, body.Error, ErrRouteNotFound.Error())
			assert.Contains(t, body.Error, tt.path)
		})
	}
}

func TestRouter_DuplicatePanics(t *testing.T) {
	rt := newTestRouter()
	assert.Panics(t, func() {
		rt.HandleFunc(http.MethodGet, "/records", echo("again"))
	})
}

func TestRouter_Routes(t *testing.T) {
	assert.Equal(t, []Route{
		{Method: http.MethodGet, Pattern: "/records"},
		{Method: http.MethodDelete, Pattern: "/records/{id}"},
		{Method: http.MethodGet, Pattern: "/records/{id}"},
	}, newTestRouter().Routes())
}

func TestRouter_HeadFollowsGet(t *testing.T) {
	rt := newTestRouter()

	var pattern string
	req := httptest.NewRequest(http.MethodHead, "/records/3", nil)
	req = req.WithContext(WithPatternHolder(req.Context(), &pattern))
	w := httptest.NewRecorder()
	rt.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "GET /records/{id}", pattern)
	for _, r := range rt.Routes() {
		assert.NotEqual(t, http.MethodHead, r.Method)
	}
}

func TestRouter_PatternHolder(t *testing.T) {
	rt := newTestRouter()

	var pattern string
	req := httptest.NewRequest(http.MethodGet, "/records/3", nil)
	req = req.WithContext(WithPatternHolder(req.Context(), &pattern))
	rt.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "GET /records/{id}", pattern)

	pattern = ""
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	req = req.WithContext(WithPatternHolder(req.Context(), &pattern))
	rt.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, pattern)
}
