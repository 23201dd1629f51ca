// Package markup holds the small query helpers site rules use to pull values
// out of fetched HTML.
package markup

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Parse builds a document from a response body.
func Parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}

// Select returns every element under sel matching the CSS selector expr, in
// document order. An empty expr selects sel itself. The result is never nil.
func Select(sel *goquery.Selection, expr string) []*goquery.Selection {
	if sel == nil {
		return []*goquery.Selection{}
	}

	matched := sel
	if expr != "" {
		matched = sel.Find(expr)
	}

	nodes := make([]*goquery.Selection, 0, matched.Length())
	matched.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, s)
	})
	return nodes
}

// Closest returns the nearest ancestor-or-self of sel matching expr. The
// result is empty (Length() == 0) when there is none.
func Closest(sel *goquery.Selection, expr string) *goquery.Selection {
	if sel == nil {
		return &goquery.Selection{}
	}
	return sel.Closest(expr)
}

type textOptions struct {
	class  string
	attr   string
	joiner string
}

// TextOption configures Text.
type TextOption func(*textOptions)

// WithClass keeps only matches whose class attribute contains token as a
// whole whitespace separated token.
func WithClass(token string) TextOption {
	return func(o *textOptions) {
		o.class = strings.TrimSpace(token)
	}
}

// WithAttr reads the named attribute instead of the element text.
func WithAttr(name string) TextOption {
	return func(o *textOptions) {
		o.attr = name
	}
}

// WithJoiner sets the separator used between multiple matches.
func WithJoiner(joiner string) TextOption {
	return func(o *textOptions) {
		o.joiner = joiner
	}
}

// Text evaluates expr from sel and returns the cleaned values of all matches
// joined together. It returns "" when nothing matches.
func Text(sel *goquery.Selection, expr string, opts ...TextOption) string {
	o := newTextOptions(opts)
	return strings.Join(values(sel, expr, o), o.joiner)
}

// Values is Text without the final join.
func Values(sel *goquery.Selection, expr string, opts ...TextOption) []string {
	return values(sel, expr, newTextOptions(opts))
}

// First returns the first cleaned value Text would have joined.
func First(sel *goquery.Selection, expr string, opts ...TextOption) string {
	vals := values(sel, expr, newTextOptions(opts))
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func newTextOptions(opts []TextOption) textOptions {
	o := textOptions{joiner: " "}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func values(sel *goquery.Selection, expr string, o textOptions) []string {
	var out []string
	for _, node := range Select(sel, expr) {
		if o.class != "" && !node.HasClass(o.class) {
			continue
		}

		var value string
		if o.attr != "" {
			v, ok := node.Attr(o.attr)
			if !ok {
				continue
			}
			value = v
		} else {
			value = GetText(node.Get(0))
		}

		value = Clean(value)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}

// GetText concatenates the text nodes below node, skipping script and style
// contents.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	switch node.Type {
	case html.TextNode:
		buffer.WriteString(node.Data)
		return
	case html.ElementNode:
		if node.Data == "script" || node.Data == "style" {
			return
		}
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		getTextRecursive(child, buffer)
	}
}

var innerWhitespace = regexp.MustCompile(`\s+`)

// Clean drops non-printable runes and collapses runs of whitespace.
func Clean(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch {
		case unicode.IsSpace(c):
			b.WriteRune(' ')
		case unicode.IsPrint(c):
			b.WriteRune(c)
		}
	}
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(b.String(), " "))
}
