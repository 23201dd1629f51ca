package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DRM tokens.
const (
	DRMLocked   = "locked"
	DRMUnlocked = "unlocked"
	DRMUnknown  = "unknown"
)

// Fold lowercases s and strips combining marks, so "Vattenmärkt" and
// "vattenmarkt" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// InferDRM scans text for the locked and unlocked keywords. A locked match
// wins over an unlocked one.
func InferDRM(text string, locked, unlocked []string) string {
	folded := Fold(text)
	if folded == "" {
		return DRMUnknown
	}

	if containsAny(folded, locked) {
		return DRMLocked
	}
	if containsAny(folded, unlocked) {
		return DRMUnlocked
	}
	return DRMUnknown
}

func containsAny(folded string, keywords []string) bool {
	for _, kw := range keywords {
		kw = Fold(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}
