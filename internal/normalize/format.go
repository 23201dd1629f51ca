// Package normalize maps noisy vendor labels onto the closed format and DRM
// vocabularies used by store results.
package normalize

import (
	"slices"
	"strings"
)

// Format tokens.
const (
	FormatEPUB    = "EPUB"
	FormatPDF     = "PDF"
	FormatUnknown = "unknown"
)

// FormatFunc normalizes a single raw format label. Site rules supply their own
// to recognize vendor synonyms before deferring to Format.
type FormatFunc func(raw string) string

var epubPrefixes = []string{"epub", "enhanced epub"}

// Format returns FormatPDF or FormatEPUB when raw starts with the matching
// marker (case-insensitive), otherwise FormatUnknown.
func Format(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))

	if strings.HasPrefix(lower, "pdf") {
		return FormatPDF
	}
	for _, prefix := range epubPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return FormatEPUB
		}
	}
	return FormatUnknown
}

// FormatList maps each label through fn (Format when nil), skips blank labels
// and returns the deduplicated, sorted tokens.
func FormatList(raws []string, fn FormatFunc) []string {
	if fn == nil {
		fn = Format
	}

	seen := make(map[string]bool)
	formats := make([]string, 0, len(raws))
	for _, raw := range raws {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		token := fn(raw)
		if seen[token] {
			continue
		}
		seen[token] = true
		formats = append(formats, token)
	}

	slices.Sort(formats)
	return formats
}
