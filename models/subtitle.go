package models

// SearchResult is a single subtitle hit scraped from a source site.
type SearchResult struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"` // Name of the source that produced the hit
}

// DownloadPayload carries a subtitle archive fetched from a source site.
type DownloadPayload struct {
	Content     []byte `json:"-"`
	Filename    string `json:"filename"`
	Size        int    `json:"size"`
	ContentType string `json:"contentType,omitempty"` // Sniffed from the archive bytes
}

// SourcesResponse is returned by the sources listing endpoint.
type SourcesResponse struct {
	Sources []string `json:"sources"`
	Total   int      `json:"total"`
	Author  string   `json:"author"`
	API     string   `json:"api"`
}

// SearchResponse is returned by the search endpoint.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
	Author  string         `json:"author"`
	API     string         `json:"api"`
}

// APIInfo describes the service on the root endpoint.
type APIInfo struct {
	Author    string   `json:"author"`
	API       string   `json:"api"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
	Sites     []string `json:"sites"`
}
