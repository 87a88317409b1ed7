package sources

import (
	"context"

	"subhub/models"
)

// PirateLKSource scrapes piratelk.com.
type PirateLKSource struct {
	site
}

func NewPirateLKSource(opts Options) *PirateLKSource {
	return &PirateLKSource{site: newSite("piratelk", "https://piratelk.com", opts)}
}

func (p *PirateLKSource) Name() string {
	return p.name
}

func (p *PirateLKSource) IsAvailable() bool {
	return !p.offline
}

func (p *PirateLKSource) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	return p.searchPage(ctx, p.wordpressSearchURL(nil, query), query)
}

// Download prefers the Download Monitor link and falls back to any direct zip link.
func (p *PirateLKSource) Download(ctx context.Context, pageURL string) (*models.DownloadPayload, error) {
	return p.download(ctx, pageURL, "a.da-download-link", `a[href$=".zip"]`)
}
