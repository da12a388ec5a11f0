// Package batch reads word list files.
package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// WordEntry is one word of a word list
type WordEntry struct {
	Word     string
	Language string
}

// ReadWordList reads words from a file. Supported line formats:
//   - word only: "gato" (gets defaultLanguage)
//   - with language: "gato = es"
//
// Blank lines and lines starting with '#' are skipped, as are lines with
// an empty word.
func ReadWordList(filename, defaultLanguage string) ([]WordEntry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	defer f.Close()

	entries, err := ParseWordList(f, defaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list %s: %w", filename, err)
	}
	return entries, nil
}

// ParseWordList parses word list lines from r.
func ParseWordList(r io.Reader, defaultLanguage string) ([]WordEntry, error) {
	var entries []WordEntry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry := WordEntry{Word: line, Language: defaultLanguage}
		if word, lang, ok := strings.Cut(line, "="); ok {
			entry.Word = strings.TrimSpace(word)
			if lang = strings.TrimSpace(lang); lang != "" {
				entry.Language = lang
			}
		}
		if entry.Word == "" {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Words returns just the words of entries.
func Words(entries []WordEntry) []string {
	words := make([]string, len(entries))
	for i, e := range entries {
		words[i] = e.Word
	}
	return words
}
