// Package adlibris holds the extraction rules for the Adlibris e-book store.
// The store has shipped two markup revisions: Microdata reads schema.org
// attributes and Embedded reads the JSON payload the current pages inline.
package adlibris

import (
	"strings"

	"github.com/lepinkainen/bookscout/internal/normalize"
	"github.com/lepinkainen/bookscout/internal/store"
)

const (
	// BaseURL is the Swedish storefront.
	BaseURL = "https://www.adlibris.com/se"

	searchTemplate = "{base}/sok?filter=format_sv:e-bok&q={query}&ps={max}"
)

var (
	lockedWords   = []string{"drm"}
	unlockedWords = []string{"vattenmärkt", "vattenmärkning"}
)

// formatSynonyms are labels the storefront prints that the shared prefix
// matcher does not recognize.
var formatSynonyms = map[string]string{
	"e-bok (epub)": normalize.FormatEPUB,
	"e-bok epub":   normalize.FormatEPUB,
	"e-bok (pdf)":  normalize.FormatPDF,
	"e-bok pdf":    normalize.FormatPDF,
}

func newSite(name, baseURL string) store.Site {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return store.Site{
		Name:          name,
		BaseURL:       strings.TrimSuffix(baseURL, "/"),
		SearchURL:     searchTemplate,
		LockedWords:   lockedWords,
		UnlockedWords: unlockedWords,
	}
}

// NormalizeFormat maps an Adlibris format label to a format token.
func NormalizeFormat(raw string) string {
	if token, ok := formatSynonyms[normalize.Fold(strings.TrimSpace(raw))]; ok {
		return token
	}
	return normalize.Format(raw)
}
