package tracking

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fixedJudge bool

func (j fixedJudge) IsCognate(context.Context, string, string, []string) bool { return bool(j) }

func TestComputeScore_Examples(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		name   string
		record WordRecord
		want   int
	}{
		{"empty record", WordRecord{}, 0},
		{"two mature word hits", WordRecord{AnkiMatureWordHits: 2}, 140},
		{"seen and looked up", WordRecord{SeenCount: 1, LookupCount: 1}, 23},
		{"seen and lookup saturate", WordRecord{SeenCount: 40, LookupCount: 7}, 23},
		{"all signals", WordRecord{
			SeenCount: 1, LookupCount: 1,
			AnkiMatureWordHits: 1, AnkiMatureContextHits: 1,
			AnkiYoungWordHits: 1, AnkiYoungContextHits: 1,
		}, 8 + 15 + 70 + 30 + 40 + 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeScore(tt.record, w))
		})
	}
}

func TestComputeScore_WithoutSaturation(t *testing.T) {
	w := DefaultWeights()
	w.Saturate = false

	assert.Equal(t, 3*8+2*15, ComputeScore(WordRecord{SeenCount: 3, LookupCount: 2}, w))
}

func TestComputeScore_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	fields := []func(*WordRecord) *int{
		func(r *WordRecord) *int { return &r.SeenCount },
		func(r *WordRecord) *int { return &r.LookupCount },
		func(r *WordRecord) *int { return &r.AnkiMatureWordHits },
		func(r *WordRecord) *int { return &r.AnkiMatureContextHits },
		func(r *WordRecord) *int { return &r.AnkiYoungWordHits },
		func(r *WordRecord) *int { return &r.AnkiYoungContextHits },
	}

	for i := 0; i < 500; i++ {
		w := Weights{
			Seen:             rng.Intn(1001),
			Lookup:           rng.Intn(1001),
			AnkiWord:         rng.Intn(1001),
			AnkiContext:      rng.Intn(1001),
			AnkiWordYoung:    rng.Intn(1001),
			AnkiContextYoung: rng.Intn(1001),
			Saturate:         rng.Intn(2) == 0,
		}
		r := WordRecord{
			SeenCount:             rng.Intn(5),
			LookupCount:           rng.Intn(5),
			AnkiMatureWordHits:    rng.Intn(5),
			AnkiMatureContextHits: rng.Intn(5),
			AnkiYoungWordHits:     rng.Intn(5),
			AnkiYoungContextHits:  rng.Intn(5),
		}
		for _, field := range fields {
			before := ComputeScore(r, w)
			bumped := r
			*field(&bumped)++
			if after := ComputeScore(bumped, w); after < before {
				t.Fatalf("score decreased from %d to %d for weights %+v record %+v", before, after, w, r)
			}
		}
	}
}

func TestComputeScore_Idempotent(t *testing.T) {
	r := WordRecord{SeenCount: 2, AnkiYoungContextHits: 3}
	w := DefaultWeights()
	th := DefaultThresholds()

	assert.Equal(t, ComputeScore(r, w), ComputeScore(r, w))
	assert.Equal(t,
		IsKnown(context.Background(), r, w, th, []string{"en"}, fixedJudge(true)),
		IsKnown(context.Background(), r, w, th, []string{"en"}, fixedJudge(true)))
}

func TestIsKnown(t *testing.T) {
	ctx := context.Background()
	th := DefaultThresholds()
	known := []string{"en"}

	matureTwice := WordRecord{Word: "gato", Language: "es", AnkiMatureWordHits: 2}
	assert.True(t, IsKnown(ctx, matureTwice, DefaultWeights(), th, known, fixedJudge(false)), "140 >= 100")
	assert.True(t, IsKnown(ctx, matureTwice, DefaultWeights(), th, known, fixedJudge(true)), "140 >= 25")

	// 8+15 = 23 stays below both the standard and the cognate threshold.
	exposed := WordRecord{Word: "nación", Language: "es", SeenCount: 1, LookupCount: 1}
	assert.False(t, IsKnown(ctx, exposed, DefaultWeights(), th, known, fixedJudge(false)))
	assert.False(t, IsKnown(ctx, exposed, DefaultWeights(), th, known, fixedJudge(true)))

	heavierSeen := DefaultWeights()
	heavierSeen.Seen = 10
	assert.False(t, IsKnown(ctx, exposed, heavierSeen, th, known, fixedJudge(false)), "25 < 100")
	assert.True(t, IsKnown(ctx, exposed, heavierSeen, th, known, fixedJudge(true)), "25 >= 25")
}

func TestIsKnown_CognateNeedsLessEvidence(t *testing.T) {
	ctx := context.Background()
	w := DefaultWeights()
	th := DefaultThresholds()

	r := WordRecord{Word: "chocolate", Language: "es", AnkiYoungContextHits: 2}
	assert.Equal(t, 40, ComputeScore(r, w))
	assert.True(t, IsKnown(ctx, r, w, th, []string{"en"}, fixedJudge(true)))
	assert.False(t, IsKnown(ctx, r, w, th, []string{"en"}, fixedJudge(false)))
}

func TestIsCognate_KnownLanguageNeverCognate(t *testing.T) {
	ctx := context.Background()
	r := WordRecord{Word: "nation", Language: "EN"}

	assert.False(t, IsCognate(ctx, r, []string{"en", "de"}, fixedJudge(true)))
	assert.True(t, IsCognate(ctx, WordRecord{Word: "nation", Language: "fr"}, []string{"en"}, fixedJudge(true)))
	assert.False(t, IsCognate(ctx, WordRecord{Word: "nation", Language: "fr"}, []string{"en"}, nil))
}

func TestFresh(t *testing.T) {
	now := mustTime(t, "2026-03-10T12:00:00Z")
	lifetime := 30 * time.Minute

	assert.False(t, WordRecord{}.Fresh(lifetime, now), "never refreshed is stale")
	assert.True(t, WordRecord{AnkiRefreshedAt: now.Add(-29 * time.Minute)}.Fresh(lifetime, now))
	assert.False(t, WordRecord{AnkiRefreshedAt: now.Add(-30 * time.Minute)}.Fresh(lifetime, now))
}
