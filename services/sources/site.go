package sources

import (
	"context"
	"log"
	"net/url"
	"strings"

	"subhub/models"
)

// site bundles the settings every scraping source carries.
type site struct {
	name    string
	baseURL string
	offline bool
	fetch   *pageFetcher
}

func newSite(name, defaultBaseURL string, opts Options) site {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return site{
		name:    name,
		baseURL: baseURL,
		offline: opts.Offline,
		fetch:   newPageFetcher(opts),
	}
}

// wordpressSearchURL builds the ?s= search URL used by WordPress-based sites.
func (s site) wordpressSearchURL(extra url.Values, query string) string {
	params := url.Values{}
	for key, values := range extra {
		params[key] = values
	}
	params.Set("s", query)
	return s.baseURL + "/?" + params.Encode()
}

func (s site) searchPage(ctx context.Context, pageURL, query string) ([]models.SearchResult, error) {
	doc, err := s.fetch.document(ctx, pageURL)
	if err != nil {
		return nil, &SearchError{Source: s.name, Err: err}
	}
	results := matchAnchors(doc, pageURL, query, s.name)
	log.Printf("[sources] %s matched %d links for %q", s.name, len(results), query)
	return results, nil
}

// download resolves the direct link on a detail page and fetches the archive.
func (s site) download(ctx context.Context, pageURL string, selectors ...string) (*models.DownloadPayload, error) {
	doc, err := s.fetch.document(ctx, pageURL)
	if err != nil {
		return nil, &DownloadFetchError{Source: s.name, URL: pageURL, Err: err}
	}

	href, ok := firstHref(doc, selectors...)
	if !ok {
		return nil, &DownloadLinkNotFoundError{Source: s.name, PageURL: pageURL}
	}
	base, _ := url.Parse(pageURL)
	link := resolveURL(base, href)

	content, err := s.fetch.raw(ctx, link)
	if err != nil {
		return nil, &DownloadFetchError{Source: s.name, URL: link, Err: err}
	}
	payload := newPayload(content)
	log.Printf("[sources] %s downloaded %d bytes (%s) from %s", s.name, payload.Size, payload.ContentType, link)
	return payload, nil
}
