package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subhub/config"
	"subhub/handlers"
	"subhub/models"
	"subhub/services/sources"
	"subhub/services/subtitles"
	"subhub/utils"
)

type staticSource struct {
	name    string
	results []models.SearchResult
	payload *models.DownloadPayload
	panics  bool
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Search(context.Context, string) ([]models.SearchResult, error) {
	if s.panics {
		panic("scraper exploded")
	}
	return s.results, nil
}

func (s *staticSource) Download(context.Context, string) (*models.DownloadPayload, error) {
	return s.payload, nil
}

func newTestRouter(srcs ...sources.Source) http.Handler {
	registry := sources.NewRegistry()
	for _, src := range srcs {
		registry.Register(src)
	}
	handler := handlers.NewSubtitlesHandler(subtitles.NewService(registry), config.DefaultSettings().API)
	r := utils.NewRouter()
	Register(r, handler)
	return r
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, allowedMethods, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, allowedHeaders, rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestRoutes_SearchEndToEnd(t *testing.T) {
	router := newTestRouter(
		&staticSource{name: "b", results: []models.SearchResult{{Title: "Y", URL: "u2", Source: "b"}}},
		&staticSource{name: "a", results: []models.SearchResult{{Title: "X", URL: "u1", Source: "a"}}},
	)

	for _, target := range []string{"/api/search?query=x", "/search?query=x", "/v2/search/all?query=x"} {
		rec := serve(router, http.MethodGet, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assertCORS(t, rec)

		var payload models.SearchResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		assert.Equal(t, 2, payload.Count)
		assert.Equal(t, []models.SearchResult{
			{Title: "X", URL: "u1", Source: "a"},
			{Title: "Y", URL: "u2", Source: "b"},
		}, payload.Results)
	}
}

func TestRoutes_SearchErrors(t *testing.T) {
	router := newTestRouter(&staticSource{name: "a"})

	rec := serve(router, http.MethodGet, "/api/search")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assertCORS(t, rec)

	rec = serve(router, http.MethodGet, "/api/search?query=x&sources=doesnotexist")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, subtitles.ErrNoValidSources.Error(), payload["error"])
}

func TestRoutes_Download(t *testing.T) {
	router := newTestRouter(&staticSource{name: "a", payload: &models.DownloadPayload{Content: []byte("zipbytes"), Size: 8}})

	rec := serve(router, http.MethodGet, "/api/download?url=https://a.test/post&source=a")
	require.Equal(t, http.StatusOK, rec.Code)
	assertCORS(t, rec)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, "zipbytes", rec.Body.String())

	rec = serve(router, http.MethodGet, "/api/download?url=https://a.test/post&source=zzz")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "invalid source: zzz", payload["error"])
}

func TestRoutes_SourcesAndInfo(t *testing.T) {
	router := newTestRouter(&staticSource{name: "a"}, &staticSource{name: "b"})

	rec := serve(router, http.MethodGet, "/api/sources")
	require.Equal(t, http.StatusOK, rec.Code)
	var sourcesPayload models.SourcesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sourcesPayload))
	assert.Equal(t, []string{"a", "b"}, sourcesPayload.Sources)
	assert.Equal(t, 2, sourcesPayload.Total)

	for _, target := range []string{"/", "/api", "/anything/else"} {
		rec = serve(router, http.MethodGet, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assertCORS(t, rec)
		var info models.APIInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info), target)
		assert.Equal(t, []string{"a", "b"}, info.Sites)
		assert.Equal(t, "1.0.0", info.Version)
	}
}

func TestRoutes_Options(t *testing.T) {
	router := newTestRouter(&staticSource{name: "a"})

	for _, target := range []string{"/api/search", "/api/download", "/whatever"} {
		rec := serve(router, http.MethodOptions, target)
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.Empty(t, rec.Body.String(), target)
		assertCORS(t, rec)
	}
}

func TestRoutes_RequestID(t *testing.T) {
	router := newTestRouter()

	rec := serve(router, http.MethodGet, "/")
	assert.NotEmpty(t, rec.Header().Get(requestIDKey))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDKey, "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDKey))
}

func TestRecoverMiddleware(t *testing.T) {
	h := recoverMiddleware(corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})))

	rec := serve(h, http.MethodGet, "/api/search?query=x")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assertCORS(t, rec)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "handler exploded", payload["error"])
}

func TestRoutes_PanickingSourceIsIsolated(t *testing.T) {
	router := newTestRouter(
		&staticSource{name: "bad", panics: true},
		&staticSource{name: "good", results: []models.SearchResult{{Title: "X", URL: "u", Source: "good"}}},
	)

	rec := serve(router, http.MethodGet, "/api/search?query=x")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload models.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Count)
}

func TestRoutes_UncleanPathsAreServedInPlace(t *testing.T) {
	router := newTestRouter(&staticSource{name: "a", results: []models.SearchResult{{Title: "X", URL: "u1", Source: "a"}}})

	for _, target := range []string{"/api//search", "/api/./sources", "/x/../download"} {
		rec := serve(router, http.MethodOptions, target)
		assert.Equal(t, http.StatusOK, rec.Code, target)
		assert.Empty(t, rec.Header().Get("Location"), target)
		assertCORS(t, rec)
	}

	rec := serve(router, http.MethodGet, "/api//search?query=x")
	require.Equal(t, http.StatusOK, rec.Code)
	assertCORS(t, rec)
	var payload models.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Count)

	rec = serve(router, http.MethodGet, "/api/./sources")
	require.Equal(t, http.StatusOK, rec.Code)
	assertCORS(t, rec)
	var sourcesPayload models.SourcesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sourcesPayload))
	assert.Equal(t, []string{"a"}, sourcesPayload.Sources)
}

func TestRoutes_SourcesParamIsTakenVerbatim(t *testing.T) {
	router := newTestRouter(&staticSource{name: "a", results: []models.SearchResult{{Title: "X", URL: "u1", Source: "a"}}})

	for _, target := range []string{
		"/api/search?query=x&sources=",
		"/api/search?query=x&sources=%20a",
		"/api/search?query=x&sources=,",
	} {
		rec := serve(router, http.MethodGet, target)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), target)
		assert.Equal(t, subtitles.ErrNoValidSources.Error(), payload["error"], target)
	}

	rec := serve(router, http.MethodGet, "/api/search?query=x&sources=b,a")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload models.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Count)
}

func TestRecoverMiddleware_KeepsResponseAlreadyStarted(t *testing.T) {
	h := recoverMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))
		panic("late failure")
	}))

	rec := serve(h, http.MethodGet, "/api/download")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
	assert.Equal(t, "partial", rec.Body.String())
}
