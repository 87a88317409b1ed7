package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/cases"

	"subhub/models"
)

const (
	// DefaultTimeout bounds every request a source makes.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent is sent when fetching archives; some sites refuse downloads without it.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	maxSearchResults = 20
	defaultFilename  = "subtitle.zip"
)

// Options configures a site source. Zero values fall back to the site defaults.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Offline   bool
	Client    *http.Client
}

// pageFetcher performs the HTTP requests shared by every site source.
type pageFetcher struct {
	client    *http.Client
	userAgent string
}

func newPageFetcher(opts Options) *pageFetcher {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &pageFetcher{client: client, userAgent: userAgent}
}

// document fetches an HTML page and parses it, decoding non-UTF-8 charsets.
func (f *pageFetcher) document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// raw fetches a URL as bytes with a browser-like User-Agent.
func (f *pageFetcher) raw(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return content, nil
}

// matchAnchors collects up to maxSearchResults links whose visible text
// contains query, ignoring case.
func matchAnchors(doc *goquery.Document, pageURL, query, source string) []models.SearchResult {
	fold := cases.Fold()
	needle := fold.String(query)
	base, _ := url.Parse(pageURL)

	results := make([]models.SearchResult, 0)
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Text())
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if title == "" || href == "" {
			return true
		}
		if !strings.Contains(fold.String(title), needle) {
			return true
		}
		results = append(results, models.SearchResult{
			Title:  title,
			URL:    resolveURL(base, href),
			Source: source,
		})
		return len(results) < maxSearchResults
	})
	return results
}

// firstHref returns the href of the first element matching any of the selectors, tried in order.
func firstHref(doc *goquery.Document, selectors ...string) (string, bool) {
	for _, selector := range selectors {
		href, ok := doc.Find(selector).First().Attr("href")
		if !ok {
			continue
		}
		if href = strings.TrimSpace(href); href != "" {
			return href, true
		}
	}
	return "", false
}

func resolveURL(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// newPayload wraps archive bytes, naming the file after the sniffed type.
func newPayload(content []byte) *models.DownloadPayload {
	payload := &models.DownloadPayload{
		Content:  content,
		Filename: defaultFilename,
		Size:     len(content),
	}
	if len(content) == 0 {
		return payload
	}
	mtype := mimetype.Detect(content)
	payload.ContentType = mtype.String()
	if ext := mtype.Extension(); ext != "" {
		payload.Filename = "subtitle" + ext
	}
	return payload
}
