package tracking

import (
	"fmt"
	"strings"
)

var searchEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`*`, `\*`,
	`_`, `\_`,
	`:`, `\:`,
)

// escapeSearch escapes Anki search metacharacters so term matches literally
// inside a quoted "field:value" clause.
func escapeSearch(term string) string {
	return searchEscaper.Replace(term)
}

// evidenceQuery restricts base to notes whose word or sentence field
// contains word.
func evidenceQuery(base, wordField, sentenceField, word string) string {
	w := escapeSearch(word)
	return fmt.Sprintf(`(%s) ("%s:*%s*" OR "%s:*%s*")`,
		strings.TrimSpace(base),
		escapeSearch(wordField), w,
		escapeSearch(sentenceField), w)
}
