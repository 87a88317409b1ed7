package sources

import (
	"context"
	"net/url"

	"subhub/models"
)

// CineruSource scrapes cineru.lk.
type CineruSource struct {
	site
}

func NewCineruSource(opts Options) *CineruSource {
	return &CineruSource{site: newSite("cineru", "https://cineru.lk", opts)}
}

func (c *CineruSource) Name() string {
	return c.name
}

func (c *CineruSource) IsAvailable() bool {
	return !c.offline
}

func (c *CineruSource) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	// Restrict to posts so category and tag archives stay out of the results page.
	extra := url.Values{"post_type": {"post"}}
	return c.searchPage(ctx, c.wordpressSearchURL(extra, query), query)
}

func (c *CineruSource) Download(ctx context.Context, pageURL string) (*models.DownloadPayload, error) {
	return c.download(ctx, pageURL, "a#btn-download", "a.download-button")
}
