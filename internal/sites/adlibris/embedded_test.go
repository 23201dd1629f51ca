package adlibris

import (
	"testing"

	"github.com/lepinkainen/bookscout/internal/errors"
	"github.com/lepinkainen/bookscout/internal/markup"
	"github.com/lepinkainen/bookscout/internal/normalize"
	"github.com/lepinkainen/bookscout/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedFindSearchFragments(t *testing.T) {
	rules := NewEmbedded("")
	doc := loadDocument(t, "embedded_search.html")

	fragments := rules.FindSearchFragments(doc)
	require.Len(t, fragments, 5)

	for _, frag := range fragments[:4] {
		assert.True(t, frag.HasClass("variant"))
	}
	assert.True(t, fragments[4].HasClass("search-result__item"))
}

func TestEmbeddedParseSearchFragment(t *testing.T) {
	rules := NewEmbedded("")
	doc := loadDocument(t, "embedded_search.html")
	fragments := rules.FindSearchFragments(doc)
	require.Len(t, fragments, 5)

	want := []store.Result{
		{
			Title:      "Dune",
			Author:     "Frank Herbert",
			Price:      "99 kr",
			CoverURL:   "https://s2.adlibris.com/images/3/dune.jpg",
			Formats:    []string{normalize.FormatEPUB, normalize.FormatUnknown},
			DRM:        normalize.DRMUnlocked,
			DetailItem: "/se/bok/dune-9780441013593?variant=epub",
		},
		{
			Title:      "Dune",
			Author:     "Frank Herbert",
			Price:      "149 kr",
			CoverURL:   "https://s2.adlibris.com/images/3/dune.jpg",
			Formats:    []string{normalize.FormatPDF, normalize.FormatUnknown},
			DRM:        normalize.DRMLocked,
			DetailItem: "/se/bok/dune-9780441013593",
		},
		{
			Title:      "Dune Messiah",
			Author:     "Frank Herbert & Brian Herbert",
			Price:      "89 kr",
			CoverURL:   "https://s2.adlibris.com/images/4/messiah.jpg",
			Formats:    []string{normalize.FormatEPUB},
			DRM:        normalize.DRMUnknown,
			DetailItem: "/se/bok/dune-messiah-9780593098233?variant=epub",
		},
		{
			Title:      "Dune Messiah",
			Author:     "Frank Herbert & Brian Herbert",
			Price:      "109 kr",
			CoverURL:   "https://s2.adlibris.com/images/4/messiah.jpg",
			Formats:    []string{normalize.FormatPDF},
			DRM:        normalize.DRMUnknown,
			DetailItem: "/se/bok/dune-messiah-9780593098233?variant=pdf",
		},
		{
			Title:      "Children of Dune",
			DetailItem: "/se/bok/children-of-dune",
		},
	}

	for i, frag := range fragments {
		got := rules.ParseSearchFragment(frag)
		require.NotNil(t, got)
		assert.Equal(t, want[i], *got, "fragment %d", i)
	}
}

func TestEmbeddedDetails(t *testing.T) {
	rules := NewEmbedded("")
	doc := loadDocument(t, "embedded_detail.html")

	frag, err := rules.FindDetailFragment(doc)
	require.NoError(t, err)
	require.Nil(t, frag.Node)

	got, err := rules.ParseDetailFragment(frag)
	require.NoError(t, err)

	assert.Equal(t, &store.Result{
		Title:    "Dune",
		Author:   "Frank Herbert & Brian Herbert",
		Price:    "99 kr",
		CoverURL: "https://s2.adlibris.com/images/3/dune-large.jpg",
		Formats:  []string{normalize.FormatEPUB},
		DRM:      normalize.DRMUnlocked,
	}, got)
}

func TestEmbeddedDetailsNotFound(t *testing.T) {
	rules := NewEmbedded("")
	doc := loadDocument(t, "embedded_detail_noscript.html")

	_, err := rules.FindDetailFragment(doc)
	require.Error(t, err)
	assert.True(t, errors.IsDetailsNotFoundError(err))
}

func TestEmbeddedDetailsShapeErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{
			name:    "missing variants",
			payload: `{title: "Dune", authors: [{name: "Frank Herbert"}]}`,
			wantErr: "product data has no variants",
		},
		{
			name:    "empty variants",
			payload: `{title: "Dune", variants: []}`,
			wantErr: "product data has no variants",
		},
		{
			name:    "missing title",
			payload: `{variants: [{format: "EPUB"}]}`,
			wantErr: "product data has no title",
		},
		{
			name:    "wrong field type",
			payload: `{title: "Dune", variants: [{format: "EPUB", price: 99}]}`,
			wantErr: "failed to decode product data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := `<html><body><script>window.__PRODUCT_DATA__ = ` + tt.payload + `;</script></body></html>`
			doc, err := markup.Parse([]byte(page))
			require.NoError(t, err)

			_, err = NewEmbedded("").FindDetailFragment(doc)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.False(t, errors.IsDetailsNotFoundError(err))
		})
	}
}

func TestEmbeddedParseDetailFragmentWrongType(t *testing.T) {
	_, err := NewEmbedded("").ParseDetailFragment(store.Fragment{Data: "not a product"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected detail fragment type string")
}

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{name: "simple", input: `{a: 1}; next()`, want: `{a: 1}`, wantOK: true},
		{name: "nested", input: `{a: {b: [1, {c: 2}]}} tail}`, want: `{a: {b: [1, {c: 2}]}}`, wantOK: true},
		{name: "braces in strings", input: `{a: "}", b: '{', c: "\"}"}`, want: `{a: "}", b: '{', c: "\"}"}`, wantOK: true},
		{name: "unbalanced", input: `{a: {b: 1}`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractObject(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
