package tracking

import (
	"context"
	"slices"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/wordsieve/internal/domain"
)

// NoteSource is the part of the flashcard store the refresher needs.
type NoteSource interface {
	// FindNotes returns the ids of notes matching an Anki search query.
	FindNotes(ctx context.Context, query string) ([]int64, error)
	// NoteFields returns the plain-text values of the named fields for
	// each note id.
	NoteFields(ctx context.Context, ids []int64, fields ...string) (map[int64]map[string]string, error)
}

// Queries configures what the refresher asks the flashcard store.
type Queries struct {
	Mature        string
	Young         string
	WordField     string
	SentenceField string
}

// DefaultQueries returns the stock maturity queries and field names.
func DefaultQueries() Queries {
	return Queries{
		Mature:        "prop:ivl>=14",
		Young:         "prop:ivl<14 is:review",
		WordField:     "Word",
		SentenceField: "Sentence",
	}
}

// Evidence is the result of one refresh. Note ids in MatureNotes and
// YoungNotes never overlap.
type Evidence struct {
	MatureWord    int
	MatureContext int
	YoungWord     int
	YoungContext  int

	MatureNotes []int64
	YoungNotes  []int64
}

// Refresher fetches Anki review evidence for a word.
type Refresher struct {
	notes   NoteSource
	queries Queries
	timeout time.Duration
}

// NewRefresher creates a refresher. A zero timeout leaves the caller's
// context deadline in charge.
func NewRefresher(notes NoteSource, queries Queries, timeout time.Duration) *Refresher {
	return &Refresher{notes: notes, queries: queries, timeout: timeout}
}

// Fetch queries the mature and young sets for word once each. It returns
// either complete evidence or an error, never partial counts.
func (r *Refresher) Fetch(ctx context.Context, word string) (Evidence, error) {
	word = domain.NormalizeWord(word)
	if word == "" {
		return Evidence{}, domain.NewValidationError("word", "must not be empty")
	}
	if strings.TrimSpace(r.queries.Mature) == "" {
		return Evidence{}, domain.NewValidationError("tracking.anki_query_mature", "must not be empty")
	}
	if strings.TrimSpace(r.queries.Young) == "" {
		return Evidence{}, domain.NewValidationError("tracking.anki_query_young", "must not be empty")
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var mature, young []int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := r.notes.FindNotes(gctx, evidenceQuery(r.queries.Mature, r.queries.WordField, r.queries.SentenceField, word))
		mature = ids
		return err
	})
	g.Go(func() error {
		ids, err := r.notes.FindNotes(gctx, evidenceQuery(r.queries.Young, r.queries.WordField, r.queries.SentenceField, word))
		young = ids
		return err
	})
	if err := g.Wait(); err != nil {
		return Evidence{}, err
	}

	young = excludeNotes(young, mature)
	ids := make([]int64, 0, len(mature)+len(young))
	ids = append(ids, mature...)
	ids = append(ids, young...)
	if len(ids) == 0 {
		return Evidence{}, nil
	}

	fields, err := r.notes.NoteFields(ctx, ids, r.queries.WordField, r.queries.SentenceField)
	if err != nil {
		return Evidence{}, err
	}

	var ev Evidence
	for _, id := range mature {
		switch r.classify(fields[id], word) {
		case wordHit:
			ev.MatureWord++
		case contextHit:
			ev.MatureContext++
		default:
			continue
		}
		ev.MatureNotes = append(ev.MatureNotes, id)
	}
	for _, id := range young {
		switch r.classify(fields[id], word) {
		case wordHit:
			ev.YoungWord++
		case contextHit:
			ev.YoungContext++
		default:
			continue
		}
		ev.YoungNotes = append(ev.YoungNotes, id)
	}
	return ev, nil
}

type hitKind int

const (
	noHit hitKind = iota
	wordHit
	contextHit
)

// classify counts a note as a word hit when word occurs as a whole token
// in the word field, otherwise as a context hit when it occurs as one in
// the sentence field. "el" does not match "elefante" or "papel".
func (r *Refresher) classify(fields map[string]string, word string) hitKind {
	want := tokens(word)
	if containsTokens(tokens(fields[r.queries.WordField]), want) {
		return wordHit
	}
	if containsTokens(tokens(fields[r.queries.SentenceField]), want) {
		return contextHit
	}
	return noHit
}

// tokens splits normalized text into words. Letters, digits and combining
// marks belong to a word; everything else separates.
func tokens(text string) []string {
	return strings.FieldsFunc(domain.NormalizeWord(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
	})
}

// containsTokens reports whether want occurs as a contiguous run in have.
func containsTokens(have, want []string) bool {
	if len(want) == 0 || len(want) > len(have) {
		return false
	}
	for i := 0; i+len(want) <= len(have); i++ {
		if slices.Equal(have[i:i+len(want)], want) {
			return true
		}
	}
	return false
}

func excludeNotes(ids, exclude []int64) []int64 {
	if len(exclude) == 0 {
		return ids
	}
	skip := make(map[int64]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := skip[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
