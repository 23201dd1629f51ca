package store

import (
	"fmt"
	"strings"
)

// Result is one book listing discovered in a store.
//
// Search parsing may leave Formats and DRM unset; GetDetails fills them from
// the detail page.
type Result struct {
	Title      string   `json:"title" yaml:"title"`
	Author     string   `json:"author" yaml:"author"`
	Price      string   `json:"price,omitempty" yaml:"price,omitempty"`
	CoverURL   string   `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`
	Formats    []string `json:"formats,omitempty" yaml:"formats,omitempty"`
	DRM        string   `json:"drm,omitempty" yaml:"drm,omitempty"`
	DetailItem string   `json:"detail_item,omitempty" yaml:"detail_item,omitempty"`
}

// Merge copies detail data into r. Fields also known from the search page are
// only filled when r has no value yet; Formats and DRM always come from d.
func (r *Result) Merge(d *Result) {
	if d == nil {
		return
	}

	fillIfEmpty(&r.Title, d.Title)
	fillIfEmpty(&r.Author, d.Author)
	fillIfEmpty(&r.Price, d.Price)
	fillIfEmpty(&r.CoverURL, d.CoverURL)
	fillIfEmpty(&r.DetailItem, d.DetailItem)

	r.Formats = append([]string(nil), d.Formats...)
	r.DRM = d.DRM
}

func fillIfEmpty(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = value
	}
}

func (r *Result) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s by %s", orDash(r.Title), orDash(r.Author))
	if r.Price != "" {
		fmt.Fprintf(&sb, " [%s]", r.Price)
	}
	if len(r.Formats) > 0 {
		fmt.Fprintf(&sb, " %s", strings.Join(r.Formats, ", "))
	}
	if r.DRM != "" {
		fmt.Fprintf(&sb, " drm=%s", r.DRM)
	}
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
