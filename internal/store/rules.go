package store

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Site describes a store's fixed endpoints and DRM vocabulary.
type Site struct {
	Name    string
	BaseURL string
	// SearchURL is a template with {base}, {query} and {max} placeholders.
	SearchURL     string
	LockedWords   []string
	UnlockedWords []string
}

// BuildSearchURL fills the search template. The query is URL-encoded.
func (s Site) BuildSearchURL(query string, maxResults int) string {
	r := strings.NewReplacer(
		"{base}", strings.TrimSuffix(s.BaseURL, "/"),
		"{query}", url.QueryEscape(query),
		"{max}", strconv.Itoa(maxResults),
	)
	return r.Replace(s.SearchURL)
}

// ResolveURL resolves a detail reference against the base URL. Relative
// references stay below the base path.
func (s Site) ResolveURL(ref string) (string, error) {
	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", s.BaseURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	target, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("invalid detail reference %q: %w", ref, err)
	}
	return base.ResolveReference(target).String(), nil
}

// Fragment is the located data source of a detail page: either a node in
// the document or a decoded payload.
type Fragment struct {
	Node *goquery.Selection
	Data any
}

// Rules are the site specific extraction hooks the Store drives.
type Rules interface {
	Site() Site

	// FindSearchFragments returns one fragment per purchasable variant, in
	// document order.
	FindSearchFragments(doc *goquery.Document) []*goquery.Selection

	// ParseSearchFragment never fails; missing markup yields empty fields.
	ParseSearchFragment(frag *goquery.Selection) *Result

	// FindDetailFragment returns a DetailsNotFoundError when the page holds
	// no detail data.
	FindDetailFragment(doc *goquery.Document) (Fragment, error)

	// ParseDetailFragment returns only the fields the detail page exposes.
	ParseDetailFragment(frag Fragment) (*Result, error)

	// NormalizeFormat maps one vendor format label to a format token.
	NormalizeFormat(raw string) string
}

// Client fetches raw pages. A Client serves a single call and is closed
// afterwards.
type Client interface {
	Get(ctx context.Context, url string) ([]byte, error)
	Close() error
}

// ClientFactory acquires a fresh Client.
type ClientFactory func() (Client, error)
