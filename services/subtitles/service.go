package subtitles

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc"

	"subhub/models"
	"subhub/services/sources"
)

var (
	// ErrInvalidQuery is returned when a search is issued without a query.
	ErrInvalidQuery = errors.New("query is required")
	// ErrNoValidSources is returned when none of the requested source names are registered.
	ErrNoValidSources = errors.New("none of the requested sources are available")
)

// InvalidSourceError is returned when a download names an unregistered source.
type InvalidSourceError struct {
	Name string
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid source: %s", e.Name)
}

// Service aggregates searches and downloads across registered subtitle sources.
type Service struct {
	registry *sources.Registry
}

func NewService(registry *sources.Registry) *Service {
	if registry == nil {
		registry = sources.NewRegistry()
	}
	return &Service{registry: registry}
}

// Search queries the requested sources (all when none are named) concurrently
// and returns the merged results ordered by source name. A failing source
// contributes no results; its error is logged and never returned.
func (s *Service) Search(ctx context.Context, query string, requested []string) ([]models.SearchResult, error) {
	if query == "" {
		return nil, ErrInvalidQuery
	}

	targets, err := s.resolve(requested)
	if err != nil {
		return nil, err
	}

	batches := make([][]models.SearchResult, len(targets))
	var wg conc.WaitGroup
	for i, src := range targets {
		i, src := i, src
		wg.Go(func() {
			batches[i] = searchOne(ctx, src, query)
		})
	}
	wg.Wait()

	merged := lo.Flatten(batches)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Source < merged[j].Source
	})
	log.Printf("[subtitles] %q produced %d results from %d source(s)", query, len(merged), len(targets))
	return merged, nil
}

// searchOne runs a single source search, converting errors and panics into an empty batch.
func searchOne(ctx context.Context, src sources.Source, query string) (results []models.SearchResult) {
	var name string
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[subtitles] %s search panicked: %v", name, r)
			results = nil
		}
	}()

	name = src.Name()
	start := time.Now()

	results, err := src.Search(ctx, query)
	if err != nil {
		log.Printf("[subtitles] %s search failed: %v", name, err)
		return nil
	}
	log.Printf("[subtitles] %s search produced %d results for %q in %s", name, len(results), query, time.Since(start).Round(10*time.Millisecond))
	return results
}

// resolve maps requested names to registered sources, silently dropping unknown names.
func (s *Service) resolve(requested []string) ([]sources.Source, error) {
	if len(requested) == 0 {
		return s.registry.All(), nil
	}

	var targets []sources.Source
	for _, name := range requested {
		if src, ok := s.registry.Get(name); ok {
			targets = append(targets, src)
		}
	}
	if len(targets) == 0 {
		return nil, ErrNoValidSources
	}
	return targets, nil
}

// Download fetches the archive behind pageURL from the named source. Source
// failures are returned unchanged.
func (s *Service) Download(ctx context.Context, pageURL, sourceName string) ([]byte, error) {
	src, ok := s.registry.Get(sourceName)
	if !ok {
		return nil, &InvalidSourceError{Name: sourceName}
	}

	payload, err := src.Download(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return []byte{}, nil
	}
	return payload.Content, nil
}

// AvailableSources lists the names of sources currently reporting themselves available.
func (s *Service) AvailableSources() []string {
	return s.registry.AvailableNames()
}

// KnownSources lists every registered source name.
func (s *Service) KnownSources() []string {
	return s.registry.Names()
}
