package cognate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"go.uber.org/zap"

	"codeberg.org/snonux/wordsieve/internal/batch"
	"codeberg.org/snonux/wordsieve/internal/domain"
)

// MinWordLength is the shortest word the lexicon judge considers. Short
// words match too many unrelated words.
const MinWordLength = 3

// Lexicon judges cognates by spelling similarity against word lists of
// the known languages.
type Lexicon struct {
	words         map[string][]string
	minSimilarity float64
}

// NewLexicon creates a judge from word lists keyed by language code.
func NewLexicon(lists map[string][]string, minSimilarity float64) *Lexicon {
	l := &Lexicon{words: make(map[string][]string, len(lists)), minSimilarity: minSimilarity}
	for lang, words := range lists {
		lang = domain.NormalizeLanguage(lang)
		for _, w := range words {
			if w = domain.FoldDiacritics(w); w != "" {
				l.words[lang] = append(l.words[lang], w)
			}
		}
	}
	return l
}

// LoadLexicon reads <dir>/<lang>.txt for each language. Missing lists are
// logged and skipped.
func LoadLexicon(dir string, languages []string, minSimilarity float64, log *zap.Logger) (*Lexicon, error) {
	if log == nil {
		log = zap.NewNop()
	}
	lists := make(map[string][]string)
	for _, lang := range domain.NormalizeLanguages(languages) {
		path := filepath.Join(dir, lang+".txt")
		entries, err := batch.ReadWordList(path, lang)
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("no word list for known language", zap.String("language", lang), zap.String("path", path))
			continue
		}
		if err != nil {
			return nil, err
		}
		lists[lang] = batch.Words(entries)
	}
	return NewLexicon(lists, minSimilarity), nil
}

// Size returns the number of words loaded for language.
func (l *Lexicon) Size(language string) int {
	return len(l.words[domain.NormalizeLanguage(language)])
}

// IsCognate implements tracking.CognateJudge.
func (l *Lexicon) IsCognate(ctx context.Context, word, language string, knownLanguages []string) bool {
	word = domain.FoldDiacritics(word)
	if utf8.RuneCountInString(word) < MinWordLength {
		return false
	}
	for _, lang := range knownLanguages {
		for _, candidate := range l.words[domain.NormalizeLanguage(lang)] {
			if ctx.Err() != nil {
				return false
			}
			if Similarity(word, candidate) >= l.minSimilarity {
				return true
			}
		}
	}
	return false
}

// Similarity is 1 minus the Levenshtein distance normalized by the longer
// word's length in runes. Identical words score 1.
func Similarity(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
