package tracking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/wordsieve/internal/domain"
)

func TestEvidenceQuery(t *testing.T) {
	tests := []struct {
		name string
		base string
		word string
		want string
	}{
		{
			name: "plain word",
			base: "prop:ivl>=14",
			word: "gato",
			want: `(prop:ivl>=14) ("Word:*gato*" OR "Sentence:*gato*")`,
		},
		{
			name: "metacharacters escaped",
			base: " prop:ivl<14 is:review ",
			word: `a_b*"c`,
			want: `(prop:ivl<14 is:review) ("Word:*a\_b\*\"c*" OR "Sentence:*a\_b\*\"c*")`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evidenceQuery(tt.base, "Word", "Sentence", tt.word))
		})
	}
}

func TestRefresherFetch_ClassifiesAndPartitions(t *testing.T) {
	q := DefaultQueries()
	notes := &fakeNotes{
		results: map[string][]int64{
			q.Mature: {1, 2, 3},
			q.Young:  {2, 4, 5, 6},
		},
		fields: map[int64]map[string]string{
			1: {"Word": "Gato", "Sentence": "El gato duerme."},
			2: {"Word": "perro", "Sentence": "El gato y el perro."},
			3: {"Word": "casa", "Sentence": "Mi casa."},
			4: {"Word": "gato", "Sentence": ""},
			5: {"Word": "gatos", "Sentence": ""},
			6: {"Word": "ratón", "Sentence": "El GATO come."},
		},
	}
	r := NewRefresher(notes, q, 0)

	ev, err := r.Fetch(context.Background(), "gato")
	require.NoError(t, err)

	assert.Equal(t, 1, ev.MatureWord)
	assert.Equal(t, 1, ev.MatureContext)
	// "gatos" is a different word, not a hit for "gato".
	assert.Equal(t, 1, ev.YoungWord)
	assert.Equal(t, 1, ev.YoungContext)
	assert.Equal(t, []int64{1, 2}, ev.MatureNotes)
	assert.Equal(t, []int64{4, 6}, ev.YoungNotes)

	for _, id := range ev.YoungNotes {
		assert.NotContains(t, ev.MatureNotes, id, "mature and young must be disjoint")
	}
}

func TestRefresherFetch_MatchesWholeWordsOnly(t *testing.T) {
	q := DefaultQueries()
	notes := &fakeNotes{
		results: map[string][]int64{
			q.Mature: {1, 2, 3},
			q.Young:  {4, 5},
		},
		fields: map[int64]map[string]string{
			1: {"Word": "elefante", "Sentence": "Un elefante gris."},
			2: {"Word": "papel", "Sentence": "Necesito papel."},
			3: {"Word": "hotel", "Sentence": "El hotel."},
			4: {"Word": "el (article)", "Sentence": ""},
			5: {"Word": "del", "Sentence": "Cerca del mar."},
		},
	}
	r := NewRefresher(notes, q, 0)

	ev, err := r.Fetch(context.Background(), "el")
	require.NoError(t, err)
	assert.Equal(t, Evidence{
		MatureContext: 1,
		YoungWord:     1,
		MatureNotes:   []int64{3},
		YoungNotes:    []int64{4},
	}, ev)

	s := ComputeScore(WordRecord{
		AnkiMatureWordHits:    ev.MatureWord,
		AnkiMatureContextHits: ev.MatureContext,
		AnkiYoungWordHits:     ev.YoungWord,
		AnkiYoungContextHits:  ev.YoungContext,
	}, DefaultWeights())
	assert.Less(t, s, DefaultThresholds().Known)
}

func TestContainsTokens(t *testing.T) {
	tests := []struct {
		text string
		word string
		want bool
	}{
		{"gato", "gato", true},
		{"El gato, negro.", "gato", true},
		{"gatos", "gato", false},
		{"papel", "el", false},
		{"por favor, gracias", "por favor", true},
		{"favor por", "por favor", false},
		{"l'eau", "eau", true},
		{"", "gato", false},
		{"gato", "", false},
	}
	for _, tt := range tests {
		if got := containsTokens(tokens(tt.text), tokens(tt.word)); got != tt.want {
			t.Errorf("containsTokens(%q, %q) = %v, want %v", tt.text, tt.word, got, tt.want)
		}
	}
}

func TestRefresherFetch_NoMatches(t *testing.T) {
	notes := &fakeNotes{}
	r := NewRefresher(notes, DefaultQueries(), 0)

	ev, err := r.Fetch(context.Background(), "gato")
	require.NoError(t, err)
	assert.Equal(t, Evidence{}, ev)
	assert.Equal(t, 2, notes.calls(), "one query per maturity class")
}

func TestRefresherFetch_Errors(t *testing.T) {
	connErr := domain.NewConnectionError("findNotes", errors.New("connection refused"))

	t.Run("find fails", func(t *testing.T) {
		r := NewRefresher(&fakeNotes{findErr: connErr}, DefaultQueries(), 0)
		_, err := r.Fetch(context.Background(), "gato")
		assert.ErrorIs(t, err, domain.ErrConnection)
	})

	t.Run("fields fail", func(t *testing.T) {
		q := DefaultQueries()
		notes := &fakeNotes{
			results:   map[string][]int64{q.Mature: {1}},
			fieldsErr: domain.NewValidationError("notesInfo", "bad field"),
		}
		_, err := NewRefresher(notes, q, 0).Fetch(context.Background(), "gato")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("empty query", func(t *testing.T) {
		q := DefaultQueries()
		q.Young = " "
		notes := &fakeNotes{}
		_, err := NewRefresher(notes, q, 0).Fetch(context.Background(), "gato")
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Zero(t, notes.calls())
	})

	t.Run("empty word", func(t *testing.T) {
		_, err := NewRefresher(&fakeNotes{}, DefaultQueries(), 0).Fetch(context.Background(), "  ")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
