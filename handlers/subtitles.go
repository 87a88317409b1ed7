package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"subhub/config"
	"subhub/models"
	"subhub/services/subtitles"
)

type subtitleService interface {
	Search(ctx context.Context, query string, requested []string) ([]models.SearchResult, error)
	Download(ctx context.Context, pageURL, sourceName string) ([]byte, error)
	AvailableSources() []string
	KnownSources() []string
}

var _ subtitleService = (*subtitles.Service)(nil)

// SubtitlesHandler exposes subtitle search, download and source listing over HTTP.
type SubtitlesHandler struct {
	Service subtitleService
	API     config.APISettings
}

func NewSubtitlesHandler(s subtitleService, api config.APISettings) *SubtitlesHandler {
	return &SubtitlesHandler{Service: s, API: api}
}

// Search handles /search?query=...&sources=a,b
func (h *SubtitlesHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("query")
	if query == "" {
		writeJSONError(w, http.StatusBadRequest, "Query parameter is required")
		return
	}

	requested := parseSourceList(q)
	results, err := h.Service.Search(r.Context(), query, requested)
	if err != nil {
		log.Printf("[subtitles] search %q (sources=%v) failed: %v", query, requested, err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []models.SearchResult{}
	}

	writeJSON(w, http.StatusOK, models.SearchResponse{
		Query:   query,
		Results: results,
		Count:   len(results),
		Author:  h.API.Author,
		API:     h.API.Name,
	})
}

// Download handles /download?url=...&source=... and streams the archive back.
func (h *SubtitlesHandler) Download(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pageURL := q.Get("url")
	source := q.Get("source")
	if pageURL == "" || source == "" {
		writeJSONError(w, http.StatusBadRequest, "URL and source parameters are required")
		return
	}

	content, err := h.Service.Download(r.Context(), pageURL, source)
	if err != nil {
		log.Printf("[subtitles] download %s from %s failed: %v", pageURL, source, err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="subtitle.zip"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		log.Printf("[subtitles] failed to write archive for %s: %v", pageURL, err)
	}
}

// Sources handles /sources.
func (h *SubtitlesHandler) Sources(w http.ResponseWriter, r *http.Request) {
	names := h.Service.AvailableSources()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, models.SourcesResponse{
		Sources: names,
		Total:   len(names),
		Author:  h.API.Author,
		API:     h.API.Name,
	})
}

// Info answers every other path with a description of the API.
func (h *SubtitlesHandler) Info(w http.ResponseWriter, r *http.Request) {
	sites := h.Service.KnownSources()
	if sites == nil {
		sites = []string{}
	}
	writeJSON(w, http.StatusOK, models.APIInfo{
		Author:  h.API.Author,
		API:     h.API.Name,
		Version: h.API.Version,
		Endpoints: []string{
			"/api/search?query=oppenheimer&sources=baiscope",
			"/api/download?url=https://www.baiscope.lk/...&source=baiscope",
			"/api/sources",
		},
		Sites: sites,
	})
}

// parseSourceList splits the sources parameter on commas, verbatim. An absent
// parameter selects every source; a present one is always a filter, so
// "sources=" and "sources=%20a" match nothing registered.
func parseSourceList(q url.Values) []string {
	if !q.Has("sources") {
		return nil
	}
	return strings.Split(q.Get("sources"), ",")
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[api] failed to encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
