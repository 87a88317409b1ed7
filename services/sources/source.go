package sources

//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks

import (
	"context"
	"fmt"

	"subhub/models"
)

// Source describes a subtitle site capable of searching and downloading archives.
type Source interface {
	Name() string
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Download(ctx context.Context, pageURL string) (*models.DownloadPayload, error)
}

// Availability is implemented by sources that can report whether they are
// currently usable. It must not perform network I/O.
type Availability interface {
	IsAvailable() bool
}

// SearchError is returned when a source fails to fetch or parse its search page.
type SearchError struct {
	Source string
	Err    error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed for %s: %v", e.Source, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// DownloadLinkNotFoundError is returned when a detail page carries no direct download link.
type DownloadLinkNotFoundError struct {
	Source  string
	PageURL string
}

func (e *DownloadLinkNotFoundError) Error() string {
	return fmt.Sprintf("download link not found on page %s (%s)", e.PageURL, e.Source)
}

// DownloadFetchError is returned when fetching a detail page or archive fails.
type DownloadFetchError struct {
	Source string
	URL    string
	Err    error
}

func (e *DownloadFetchError) Error() string {
	return fmt.Sprintf("download failed for %s: %v", e.Source, e.Err)
}

func (e *DownloadFetchError) Unwrap() error {
	return e.Err
}
