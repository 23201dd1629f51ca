// Package store runs the search and detail scraping sequence for one site.
package store

import (
	"context"
	stdErrors "errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/lepinkainen/bookscout/internal/errors"
	"github.com/lepinkainen/bookscout/internal/markup"
)

// Store drives a site's Rules against pages fetched by short lived clients.
type Store struct {
	rules     Rules
	newClient ClientFactory
	logger    *slog.Logger
}

// Option is a functional option for configuring the Store.
type Option func(*Store)

// WithLogger sets the logger used for progress messages.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Store for the given rules.
func New(rules Rules, newClient ClientFactory, opts ...Option) *Store {
	s := &Store{
		rules:     rules,
		newClient: newClient,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Site returns the site the store scrapes.
func (s *Store) Site() Site {
	return s.rules.Site()
}

// Search fetches the search page for query and returns a sequence of at most
// maxResults results in page order. Fragments are parsed only as the
// sequence is consumed. The sequence is single use.
func (s *Store) Search(ctx context.Context, query string, maxResults int, timeout time.Duration) (iter.Seq[*Result], error) {
	if maxResults < 1 {
		return nil, fmt.Errorf("max results must be positive, got %d", maxResults)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", timeout)
	}

	site := s.rules.Site()
	searchURL := site.BuildSearchURL(query, maxResults)
	s.logger.Debug("Searching store", "site", site.Name, "query", query, "url", searchURL)

	doc, err := s.fetchDocument(ctx, searchURL, timeout)
	if err != nil {
		return nil, err
	}

	fragments := s.rules.FindSearchFragments(doc)
	s.logger.Debug("Located search fragments", "site", site.Name, "count", len(fragments))

	used := false
	return func(yield func(*Result) bool) {
		if used {
			return
		}
		used = true

		for i, frag := range fragments {
			if i >= maxResults {
				return
			}
			if !yield(s.rules.ParseSearchFragment(frag)) {
				return
			}
		}
	}, nil
}

// GetDetails fetches the detail page of r and merges the detail fields into
// it. On error r is left untouched.
func (s *Store) GetDetails(ctx context.Context, r *Result, timeout time.Duration) (*Result, error) {
	if r == nil {
		return nil, fmt.Errorf("result is nil")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", timeout)
	}

	detailURL, err := s.DetailURL(r)
	if err != nil {
		return nil, err
	}

	doc, err := s.fetchDocument(ctx, detailURL, timeout)
	if err != nil {
		return nil, err
	}

	frag, err := s.rules.FindDetailFragment(doc)
	if err != nil {
		var notFound *errors.DetailsNotFoundError
		if stdErrors.As(err, &notFound) && notFound.URL == "" {
			notFound.URL = detailURL
		}
		return nil, err
	}

	details, err := s.rules.ParseDetailFragment(frag)
	if err != nil {
		return nil, fmt.Errorf("failed to parse details from %s: %w", detailURL, err)
	}

	r.Merge(details)
	s.logger.Debug("Merged details", "site", s.rules.Site().Name, "title", r.Title, "formats", r.Formats, "drm", r.DRM)
	return r, nil
}

// DetailURL returns the absolute URL of r's detail page.
func (s *Store) DetailURL(r *Result) (string, error) {
	if r == nil || r.DetailItem == "" {
		return "", fmt.Errorf("result has no detail reference")
	}
	return s.rules.Site().ResolveURL(r.DetailItem)
}

func (s *Store) fetchDocument(ctx context.Context, pageURL string, timeout time.Duration) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := s.newClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.logger.Warn("Failed to close client", "error", err)
		}
	}()

	body, err := client.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return markup.Parse(body)
}
