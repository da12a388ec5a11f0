package tracking

import (
	"context"
	"slices"

	"codeberg.org/snonux/wordsieve/internal/domain"
)

// Weights are the per-signal contributions to a word's score.
type Weights struct {
	Seen             int
	Lookup           int
	AnkiWord         int
	AnkiContext      int
	AnkiWordYoung    int
	AnkiContextYoung int

	// Saturate makes seen and lookup count once no matter how often they
	// happened. When false the raw counts are multiplied.
	Saturate bool
}

// DefaultWeights returns the stock weight table.
func DefaultWeights() Weights {
	return Weights{
		Seen:             8,
		Lookup:           15,
		AnkiWord:         70,
		AnkiContext:      30,
		AnkiWordYoung:    40,
		AnkiContextYoung: 20,
		Saturate:         true,
	}
}

// Thresholds are the minimum scores for a word to be known.
type Thresholds struct {
	Known        int
	KnownCognate int
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Known: 100, KnownCognate: 25}
}

// CognateJudge decides whether word in language resembles a word in one of
// the learner's known languages.
type CognateJudge interface {
	IsCognate(ctx context.Context, word, language string, knownLanguages []string) bool
}

// ComputeScore is a pure function of the record's counts and w.
func ComputeScore(r WordRecord, w Weights) int {
	seen, lookup := r.SeenCount, r.LookupCount
	if w.Saturate {
		seen, lookup = min(seen, 1), min(lookup, 1)
	}
	return w.Seen*max(seen, 0) +
		w.Lookup*max(lookup, 0) +
		w.AnkiWord*max(r.AnkiMatureWordHits, 0) +
		w.AnkiContext*max(r.AnkiMatureContextHits, 0) +
		w.AnkiWordYoung*max(r.AnkiYoungWordHits, 0) +
		w.AnkiContextYoung*max(r.AnkiYoungContextHits, 0)
}

// IsCognate reports whether the cognate threshold applies to r: its
// language must not be known already and judge must accept the word.
func IsCognate(ctx context.Context, r WordRecord, knownLanguages []string, judge CognateJudge) bool {
	if judge == nil {
		return false
	}
	known := domain.NormalizeLanguages(knownLanguages)
	if slices.Contains(known, domain.NormalizeLanguage(r.Language)) {
		return false
	}
	return judge.IsCognate(ctx, r.Word, r.Language, known)
}

// IsKnown classifies r against th, choosing the cognate threshold when
// IsCognate holds.
func IsKnown(ctx context.Context, r WordRecord, w Weights, th Thresholds, knownLanguages []string, judge CognateJudge) bool {
	threshold := th.Known
	if IsCognate(ctx, r, knownLanguages, judge) {
		threshold = th.KnownCognate
	}
	return ComputeScore(r, w) >= threshold
}
