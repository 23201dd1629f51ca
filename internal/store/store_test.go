package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/lepinkainen/bookscout/internal/errors"
	"github.com/lepinkainen/bookscout/internal/markup"
	"github.com/lepinkainen/bookscout/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	pages  map[string]string
	err    error
	closed int
	urls   []string
}

func (c *fakeClient) Get(_ context.Context, url string) ([]byte, error) {
	c.urls = append(c.urls, url)
	if c.err != nil {
		return nil, c.err
	}
	page, ok := c.pages[url]
	if !ok {
		return nil, errors.NewStatusError(url, 404, nil)
	}
	return []byte(page), nil
}

func (c *fakeClient) Close() error {
	c.closed++
	return nil
}

// listRules treats every <li> as a search fragment and #details as the
// detail fragment.
type listRules struct {
	parsed int
}

func (r *listRules) Site() Site {
	return Site{
		Name:          "test",
		BaseURL:       "https://books.example.com/se",
		SearchURL:     "{base}/search?q={query}&n={max}",
		LockedWords:   []string{"drm"},
		UnlockedWords: []string{"watermark"},
	}
}

func (r *listRules) FindSearchFragments(doc *goquery.Document) []*goquery.Selection {
	return markup.Select(doc.Selection, "li")
}

func (r *listRules) ParseSearchFragment(frag *goquery.Selection) *Result {
	r.parsed++
	return &Result{
		Title:      markup.Text(frag, ".title"),
		Price:      markup.Text(frag, ".price"),
		DetailItem: markup.Text(frag, "a", markup.WithAttr("href")),
	}
}

func (r *listRules) FindDetailFragment(doc *goquery.Document) (Fragment, error) {
	node := doc.Find("#details")
	if node.Length() == 0 {
		return Fragment{}, errors.NewDetailsNotFoundError("no #details node")
	}
	return Fragment{Node: node}, nil
}

func (r *listRules) ParseDetailFragment(frag Fragment) (*Result, error) {
	labels := markup.Values(frag.Node, ".format")
	return &Result{
		Title:   markup.Text(frag.Node, ".title"),
		Author:  markup.Text(frag.Node, ".author", markup.WithJoiner(" & ")),
		Price:   markup.Text(frag.Node, ".price"),
		Formats: normalize.FormatList(labels, r.NormalizeFormat),
		DRM:     normalize.InferDRM(strings.Join(labels, " "), r.Site().LockedWords, r.Site().UnlockedWords),
	}, nil
}

func (r *listRules) NormalizeFormat(raw string) string {
	return normalize.Format(raw)
}

func searchPage(n int) string {
	var sb strings.Builder
	sb.WriteString("<ul>")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, `<li><span class="title">Book %d</span><span class="price">%d kr</span><a href="/bok/%d">x</a></li>`, i, i*10, i)
	}
	sb.WriteString("</ul>")
	return sb.String()
}

const searchURL = "https://books.example.com/se/search?q=le+guin&n=3"

func newTestStore(rules Rules, client *fakeClient) *Store {
	return New(rules, func() (Client, error) { return client, nil })
}

func TestSearchLimitsAndKeepsOrder(t *testing.T) {
	client := &fakeClient{pages: map[string]string{searchURL: searchPage(10)}}
	s := newTestStore(&listRules{}, client)

	seq, err := s.Search(context.Background(), "le guin", 3, 10*time.Second)
	require.NoError(t, err)

	var titles []string
	for r := range seq {
		titles = append(titles, r.Title)
	}

	assert.Equal(t, []string{"Book 1", "Book 2", "Book 3"}, titles)
	assert.Equal(t, []string{searchURL}, client.urls)
	assert.Equal(t, 1, client.closed)
}

func TestSearchIsLazy(t *testing.T) {
	client := &fakeClient{pages: map[string]string{searchURL: searchPage(10)}}
	rules := &listRules{}
	s := newTestStore(rules, client)

	seq, err := s.Search(context.Background(), "le guin", 3, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, rules.parsed)

	for range seq {
		break
	}
	assert.Equal(t, 1, rules.parsed)
}

func TestSearchIsSingleUse(t *testing.T) {
	client := &fakeClient{pages: map[string]string{searchURL: searchPage(2)}}
	s := newTestStore(&listRules{}, client)

	seq, err := s.Search(context.Background(), "le guin", 3, time.Second)
	require.NoError(t, err)

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}

	assert.Equal(t, 2, first)
	assert.Equal(t, 0, second)
}

func TestSearchFetchFailure(t *testing.T) {
	client := &fakeClient{err: errors.NewTimeoutError(searchURL, context.DeadlineExceeded)}
	s := newTestStore(&listRules{}, client)

	seq, err := s.Search(context.Background(), "le guin", 3, time.Second)
	require.Error(t, err)
	assert.Nil(t, seq)
	assert.True(t, errors.IsFetchError(err))
	assert.Equal(t, 1, client.closed, "client must be released on failure")
}

func TestSearchRejectsInvalidArguments(t *testing.T) {
	client := &fakeClient{}
	s := newTestStore(&listRules{}, client)

	_, err := s.Search(context.Background(), "x", 0, time.Second)
	require.Error(t, err)

	_, err = s.Search(context.Background(), "x", 3, 0)
	require.Error(t, err)

	assert.Empty(t, client.urls)
}

func TestSearchClientFactoryError(t *testing.T) {
	s := New(&listRules{}, func() (Client, error) { return nil, fmt.Errorf("no browser") })

	_, err := s.Search(context.Background(), "x", 3, time.Second)
	require.ErrorContains(t, err, "no browser")
}

const detailURL = "https://books.example.com/se/bok/1"

func TestGetDetailsMerges(t *testing.T) {
	client := &fakeClient{pages: map[string]string{
		detailURL: `<div id="details">
			<h1 class="title">Book 1 (detail)</h1>
			<span class="author">A. Author</span><span class="author">B. Author</span>
			<span class="price">99 kr</span>
			<span class="format">EPUB (DRM)</span><span class="format">PDF</span>
		</div>`,
	}}
	s := newTestStore(&listRules{}, client)

	r := &Result{Title: "Book 1", Price: "10 kr", Formats: []string{"unknown"}, DetailItem: "/se/bok/1"}
	got, err := s.GetDetails(context.Background(), r, time.Second)
	require.NoError(t, err)

	assert.Same(t, r, got)
	assert.Equal(t, "Book 1", r.Title)
	assert.Equal(t, "A. Author & B. Author", r.Author)
	assert.Equal(t, "10 kr", r.Price)
	assert.Equal(t, []string{"EPUB", "PDF"}, r.Formats)
	assert.Equal(t, normalize.DRMLocked, r.DRM)
	assert.Equal(t, 1, client.closed)
}

func TestGetDetailsNotFoundLeavesResultUntouched(t *testing.T) {
	client := &fakeClient{pages: map[string]string{detailURL: `<p>nothing here</p>`}}
	s := newTestStore(&listRules{}, client)

	r := &Result{Title: "Book 1", Price: "10 kr", DetailItem: "bok/1"}
	before := *r

	got, err := s.GetDetails(context.Background(), r, time.Second)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, errors.IsDetailsNotFoundError(err))
	assert.False(t, errors.IsFetchError(err))
	assert.Contains(t, err.Error(), detailURL)
	assert.Equal(t, before, *r)
}

func TestGetDetailsFetchFailure(t *testing.T) {
	client := &fakeClient{pages: map[string]string{}}
	s := newTestStore(&listRules{}, client)

	r := &Result{Title: "Book 1", DetailItem: "/se/bok/404"}
	_, err := s.GetDetails(context.Background(), r, time.Second)
	require.Error(t, err)
	assert.True(t, errors.IsFetchError(err))
	assert.Empty(t, r.Formats)
}

func TestGetDetailsWithoutReference(t *testing.T) {
	s := newTestStore(&listRules{}, &fakeClient{})

	_, err := s.GetDetails(context.Background(), &Result{Title: "x"}, time.Second)
	require.ErrorContains(t, err, "no detail reference")

	_, err = s.GetDetails(context.Background(), nil, time.Second)
	require.Error(t, err)
}
