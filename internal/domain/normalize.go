package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeWord prepares a word for use as a record key:
//   - trims leading/trailing whitespace
//   - composes to Unicode NFC
//   - applies full case folding
//   - compresses inner whitespace runs into a single space
//
// Diacritics, hyphens, and apostrophes are preserved.
func NormalizeWord(word string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return ""
	}
	// A Caser is stateful, so each call gets its own.
	word = cases.Fold().String(norm.NFC.String(word))
	return strings.Join(strings.Fields(word), " ")
}

// NormalizeLanguage lower-cases and trims a language code.
func NormalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// NormalizeLanguages normalizes a list of language codes, dropping empty
// entries and duplicates while keeping order.
func NormalizeLanguages(langs []string) []string {
	seen := make(map[string]bool, len(langs))
	out := make([]string, 0, len(langs))
	for _, l := range langs {
		l = NormalizeLanguage(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// FoldDiacritics normalizes a word and strips combining marks, so that
// "café" and "cafe" compare equal.
func FoldDiacritics(word string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, NormalizeWord(word))
	if err != nil {
		return NormalizeWord(word)
	}
	return folded
}
