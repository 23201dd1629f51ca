package adlibris

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/lepinkainen/bookscout/internal/errors"
	"github.com/lepinkainen/bookscout/internal/markup"
	"github.com/lepinkainen/bookscout/internal/normalize"
	"github.com/lepinkainen/bookscout/internal/store"
	"github.com/titanous/json5"
)

// EmbeddedName is the registry name of the current markup revision.
const EmbeddedName = "adlibris"

const (
	resultSelector  = ".search-result__item"
	variantSelector = ".variant"
	titleSelector   = ".search-result__title"
)

var productDataPattern = regexp.MustCompile(`window\.__PRODUCT_DATA__\s*=\s*\{`)

// productData is the shape of the product payload inlined on detail pages.
type productData struct {
	Title   string `json:"title"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
	ImageURL string           `json:"imageUrl"`
	Variants []productVariant `json:"variants"`
}

type productVariant struct {
	Format        string   `json:"format"`
	FormatDetails []string `json:"formatDetails"`
	Price         string   `json:"price"`
}

// productDetail is a payload narrowed to the variant a detail page shows.
type productDetail struct {
	Title    string
	Authors  []string
	ImageURL string
	Variant  productVariant
}

// Embedded reads search result cards and the product JSON inlined in a
// script element on detail pages.
type Embedded struct {
	site store.Site
}

// NewEmbedded returns rules for baseURL, or for BaseURL when it is empty.
func NewEmbedded(baseURL string) *Embedded {
	return &Embedded{site: newSite(EmbeddedName, baseURL)}
}

func (e *Embedded) Site() store.Site {
	return e.site
}

// FindSearchFragments returns one fragment per variant row. A result card
// without variants is a fragment of its own.
func (e *Embedded) FindSearchFragments(doc *goquery.Document) []*goquery.Selection {
	fragments := []*goquery.Selection{}
	for _, item := range markup.Select(doc.Selection, resultSelector) {
		variants := markup.Select(item, variantSelector)
		if len(variants) == 0 {
			fragments = append(fragments, item)
			continue
		}
		fragments = append(fragments, variants...)
	}
	return fragments
}

func (e *Embedded) ParseSearchFragment(frag *goquery.Selection) *store.Result {
	item := markup.Closest(frag, resultSelector)

	r := &store.Result{
		Title:    markup.First(item, titleSelector),
		Author:   markup.Text(item, ".search-result__author", markup.WithJoiner(" & ")),
		Price:    markup.First(frag, "*", markup.WithClass("price")),
		CoverURL: markup.First(item, "img.product-image", markup.WithAttr("src")),
	}

	if frag.Is(variantSelector) {
		r.DetailItem = markup.First(frag, "a", markup.WithAttr("href"))
	}
	if r.DetailItem == "" {
		r.DetailItem = markup.First(item, titleSelector, markup.WithAttr("href"))
	}
	if r.DetailItem == "" {
		r.DetailItem = markup.First(item, titleSelector+" a", markup.WithAttr("href"))
	}

	if labels := markup.Values(frag, "*", markup.WithClass("format")); len(labels) > 0 {
		r.Formats = normalize.FormatList(labels, e.NormalizeFormat)
		r.DRM = normalize.InferDRM(strings.Join(labels, " "), e.site.LockedWords, e.site.UnlockedWords)
	}

	return r
}

// FindDetailFragment locates the product payload script and decodes it. A
// page without the payload yields a DetailsNotFoundError; a payload that does
// not have the expected shape is a decode error.
func (e *Embedded) FindDetailFragment(doc *goquery.Document) (store.Fragment, error) {
	raw, ok := findProductData(doc)
	if !ok {
		return store.Fragment{}, errors.NewDetailsNotFoundError("no product data script")
	}

	detail, err := decodeProductData(raw)
	if err != nil {
		return store.Fragment{}, err
	}
	return store.Fragment{Data: detail}, nil
}

func (e *Embedded) ParseDetailFragment(frag store.Fragment) (*store.Result, error) {
	detail, ok := frag.Data.(productDetail)
	if !ok {
		return nil, fmt.Errorf("unexpected detail fragment type %T", frag.Data)
	}

	variant := detail.Variant
	r := &store.Result{
		Title:    detail.Title,
		Author:   strings.Join(detail.Authors, " & "),
		Price:    markup.Clean(variant.Price),
		CoverURL: strings.TrimSpace(detail.ImageURL),
	}

	labels := []string{variant.Format}
	for _, d := range variant.FormatDetails {
		// Details also list protection labels; keep only recognized formats.
		if e.NormalizeFormat(d) != normalize.FormatUnknown {
			labels = append(labels, d)
		}
	}
	r.Formats = normalize.FormatList(labels, e.NormalizeFormat)

	drmText := strings.Join(append([]string{variant.Format}, variant.FormatDetails...), " ")
	r.DRM = normalize.InferDRM(drmText, e.site.LockedWords, e.site.UnlockedWords)

	return r, nil
}

func (e *Embedded) NormalizeFormat(raw string) string {
	return NormalizeFormat(raw)
}

// findProductData returns the object literal assigned to
// window.__PRODUCT_DATA__ in the first script that has one.
func findProductData(doc *goquery.Document) (string, bool) {
	for _, script := range markup.Select(doc.Selection, "script") {
		text := script.Text()
		loc := productDataPattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if obj, ok := extractObject(text[loc[1]-1:]); ok {
			return obj, true
		}
	}
	return "", false
}

// extractObject returns the balanced {...} literal s starts with. Braces
// inside string literals are ignored.
func extractObject(s string) (string, bool) {
	depth := 0
	var quote byte
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

func decodeProductData(raw string) (productDetail, error) {
	var data productData
	if err := json5.Unmarshal([]byte(raw), &data); err != nil {
		return productDetail{}, fmt.Errorf("failed to decode product data: %w", err)
	}

	if strings.TrimSpace(data.Title) == "" {
		return productDetail{}, fmt.Errorf("product data has no title")
	}
	if len(data.Variants) == 0 {
		return productDetail{}, fmt.Errorf("product data has no variants")
	}

	detail := productDetail{
		Title:    markup.Clean(data.Title),
		ImageURL: data.ImageURL,
		Variant:  data.Variants[0],
	}
	for _, a := range data.Authors {
		if name := markup.Clean(a.Name); name != "" {
			detail.Authors = append(detail.Authors, name)
		}
	}
	return detail, nil
}
