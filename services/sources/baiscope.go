package sources

import (
	"context"

	"subhub/models"
)

// BaiscopeSource scrapes baiscopelk.com.
type BaiscopeSource struct {
	site
}

func NewBaiscopeSource(opts Options) *BaiscopeSource {
	return &BaiscopeSource{site: newSite("baiscope", "https://baiscopelk.com", opts)}
}

func (b *BaiscopeSource) Name() string {
	return b.name
}

func (b *BaiscopeSource) IsAvailable() bool {
	return !b.offline
}

func (b *BaiscopeSource) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	return b.searchPage(ctx, b.wordpressSearchURL(nil, query), query)
}

// Download follows the Elementor download button, which opts out of page transitions.
func (b *BaiscopeSource) Download(ctx context.Context, pageURL string) (*models.DownloadPayload, error) {
	return b.download(ctx, pageURL, "a[data-e-disable-page-transition=true]")
}
