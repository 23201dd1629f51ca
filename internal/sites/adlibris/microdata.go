package adlibris

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/lepinkainen/bookscout/internal/errors"
	"github.com/lepinkainen/bookscout/internal/markup"
	"github.com/lepinkainen/bookscout/internal/normalize"
	"github.com/lepinkainen/bookscout/internal/store"
)

// MicrodataName is the registry name of the schema.org markup revision.
const MicrodataName = "adlibris-microdata"

const (
	bookSelector    = `[itemtype="https://schema.org/Book"]`
	offerSelector   = `[itemprop="offers"]`
	nameSelector    = `[itemprop="name"]`
	authorSelector  = `[itemprop="author"]`
	imageSelector   = `img[itemprop="image"]`
	formatPanelItem = `li:contains("elektroniska format:")`
	formatValue     = "product-info-panel__attributes__value"
)

// Microdata reads search and product pages annotated with schema.org Book
// and Offer attributes.
type Microdata struct {
	site store.Site
}

// NewMicrodata returns rules for baseURL, or for BaseURL when it is empty.
func NewMicrodata(baseURL string) *Microdata {
	return &Microdata{site: newSite(MicrodataName, baseURL)}
}

func (m *Microdata) Site() store.Site {
	return m.site
}

// FindSearchFragments returns one fragment per offer. A book without offers
// is a fragment of its own.
func (m *Microdata) FindSearchFragments(doc *goquery.Document) []*goquery.Selection {
	fragments := []*goquery.Selection{}
	for _, book := range markup.Select(doc.Selection, bookSelector) {
		offers := markup.Select(book, offerSelector)
		if len(offers) == 0 {
			fragments = append(fragments, book)
			continue
		}
		fragments = append(fragments, offers...)
	}
	return fragments
}

func (m *Microdata) ParseSearchFragment(frag *goquery.Selection) *store.Result {
	book := markup.Closest(frag, bookSelector)

	r := &store.Result{
		Title:    markup.First(book, nameSelector),
		Author:   markup.Text(book, authorSelector, markup.WithJoiner(" & ")),
		Price:    markup.First(frag, "*", markup.WithClass("current-price")),
		CoverURL: markup.First(book, imageSelector, markup.WithAttr("data-original")),
	}

	// Offers may carry their own product link.
	r.DetailItem = markup.First(frag, `a[itemprop="url"]`, markup.WithAttr("href"))
	if r.DetailItem == "" {
		r.DetailItem = markup.First(book, ".item-info a", markup.WithAttr("href"))
	}

	if labels := markup.Values(frag, "*", markup.WithClass("format")); len(labels) > 0 {
		r.Formats = normalize.FormatList(labels, m.NormalizeFormat)
		r.DRM = normalize.InferDRM(markup.Text(frag, "*", markup.WithClass("format")), m.site.LockedWords, m.site.UnlockedWords)
	}

	return r
}

// FindDetailFragment returns the first Book node on the page.
func (m *Microdata) FindDetailFragment(doc *goquery.Document) (store.Fragment, error) {
	books := markup.Select(doc.Selection, bookSelector)
	if len(books) == 0 {
		return store.Fragment{}, errors.NewDetailsNotFoundError("no schema.org Book node")
	}
	return store.Fragment{Node: books[0]}, nil
}

func (m *Microdata) ParseDetailFragment(frag store.Fragment) (*store.Result, error) {
	book := frag.Node
	if book == nil || book.Length() == 0 {
		return nil, errors.NewDetailsNotFoundError("empty detail fragment")
	}

	r := &store.Result{
		Title:    markup.First(book, nameSelector),
		Author:   markup.Text(book, authorSelector, markup.WithJoiner(" & ")),
		Price:    markup.First(book, "*", markup.WithClass("current-price")),
		CoverURL: markup.First(book, imageSelector, markup.WithAttr("src")),
	}
	if r.Title == "" {
		return nil, errors.NewDetailsNotFoundError("Book node has no name")
	}

	labels := markup.Values(book, formatPanelItem+" *", markup.WithClass(formatValue))
	r.Formats = normalize.FormatList(labels, m.NormalizeFormat)
	r.DRM = normalize.InferDRM(markup.Text(book, formatPanelItem+" *", markup.WithClass(formatValue)), m.site.LockedWords, m.site.UnlockedWords)

	return r, nil
}

func (m *Microdata) NormalizeFormat(raw string) string {
	return NormalizeFormat(raw)
}
