package sources

import (
	"context"

	"subhub/models"
)

// ZoomSource scrapes zoom.lk.
type ZoomSource struct {
	site
}

func NewZoomSource(opts Options) *ZoomSource {
	return &ZoomSource{site: newSite("zoom", "https://zoom.lk", opts)}
}

func (z *ZoomSource) Name() string {
	return z.name
}

func (z *ZoomSource) IsAvailable() bool {
	return !z.offline
}

func (z *ZoomSource) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	return z.searchPage(ctx, z.wordpressSearchURL(nil, query), query)
}

func (z *ZoomSource) Download(ctx context.Context, pageURL string) (*models.DownloadPayload, error) {
	return z.download(ctx, pageURL, "a.download-link", `a[href*="/download/"]`)
}
