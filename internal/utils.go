package internal

import (
	"strings"
	"unicode"
)

// SanitizeFilename creates a safe filename from a string. Letters and
// digits of any script are kept, as are '-', '_' and '.'; everything else
// becomes '_'. Leading dots are replaced so the result is never hidden or
// a path component like "..".
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	result := b.String()
	if trimmed := strings.TrimLeft(result, "."); trimmed != result {
		result = strings.Repeat("_", len(result)-len(trimmed)) + trimmed
	}
	if result == "" {
		return "_"
	}
	return result
}
