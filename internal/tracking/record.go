package tracking

import (
	"fmt"
	"time"
	"unicode"

	"codeberg.org/snonux/wordsieve/internal/domain"
)

// Key identifies a WordRecord.
type Key struct {
	Word     string
	Language string
}

// NewKey normalizes word and language into a record key.
func NewKey(word, language string) (Key, error) {
	k := Key{
		Word:     domain.NormalizeWord(word),
		Language: domain.NormalizeLanguage(language),
	}
	if k.Word == "" {
		return Key{}, domain.NewValidationError("word", "must not be empty")
	}
	if k.Language == "" {
		return Key{}, domain.NewValidationError("language", "must not be empty")
	}
	if !validLanguage(k.Language) {
		return Key{}, domain.NewValidationError("language", fmt.Sprintf("invalid code %q", k.Language))
	}
	return k, nil
}

// validLanguage accepts codes like "es", "pt-br" or "zh_hant".
func validLanguage(code string) bool {
	for _, r := range code {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

// id is a collision-free map and singleflight key.
func (k Key) id() string {
	return k.Language + "\x00" + k.Word
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Language, k.Word)
}

// WordRecord is the accumulated evidence for one (word, language) pair.
// Score and cognate status are derived at query time and never stored.
type WordRecord struct {
	Word     string
	Language string

	// LastLookup is the time of the last counted lookup.
	LastLookup  time.Time
	SeenCount   int
	LookupCount int

	AnkiMatureWordHits    int
	AnkiMatureContextHits int
	AnkiYoungWordHits     int
	AnkiYoungContextHits  int
	// AnkiRefreshedAt is zero until the Anki counts were fetched once.
	AnkiRefreshedAt time.Time
}

// NewRecord returns an empty record for key.
func NewRecord(key Key) WordRecord {
	return WordRecord{Word: key.Word, Language: key.Language}
}

// Key returns the record's key.
func (r WordRecord) Key() Key {
	return Key{Word: r.Word, Language: r.Language}
}

// Fresh reports whether the Anki-derived counts are younger than lifetime
// at now. A record that was never refreshed is stale.
func (r WordRecord) Fresh(lifetime time.Duration, now time.Time) bool {
	if r.AnkiRefreshedAt.IsZero() {
		return false
	}
	return now.Sub(r.AnkiRefreshedAt) < lifetime
}

// sameCalendarDay compares the calendar dates of a and b in b's location.
func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func capCount(n, max int) int {
	if n < 0 {
		return 0
	}
	if max > 0 && n > max {
		return max
	}
	return n
}
