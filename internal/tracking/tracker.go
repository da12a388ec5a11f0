package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"codeberg.org/snonux/wordsieve/internal/domain"
)

// Options are the scoring parameters of a Tracker.
type Options struct {
	Weights        Weights
	Thresholds     Thresholds
	KnownLanguages []string
	// DataLifetime is how long fetched Anki counts stay fresh.
	DataLifetime time.Duration
	// MaxCount caps every accumulator.
	MaxCount    int
	AnkiEnabled bool
}

// DefaultOptions returns the stock scoring parameters.
func DefaultOptions() Options {
	return Options{
		Weights:        DefaultWeights(),
		Thresholds:     DefaultThresholds(),
		KnownLanguages: []string{"en"},
		DataLifetime:   1800 * time.Second,
		MaxCount:       1000,
		AnkiEnabled:    true,
	}
}

// Config wires a Tracker.
type Config struct {
	Store     Store
	Refresher *Refresher // nil disables Anki evidence
	Judge     CognateJudge
	Options   Options
	Logger    *zap.Logger
}

// Tracker ingests evidence events and classifies words.
type Tracker struct {
	store     Store
	refresher *Refresher
	judge     CognateJudge
	opts      Options
	log       *zap.Logger

	locks  keyedMutex
	flight singleflight.Group
}

// NewTracker creates a tracker.
func NewTracker(cfg *Config) (*Tracker, error) {
	if cfg == nil || cfg.Store == nil {
		return nil, fmt.Errorf("tracker requires a store")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	opts := cfg.Options
	opts.KnownLanguages = domain.NormalizeLanguages(opts.KnownLanguages)
	return &Tracker{
		store:     cfg.Store,
		refresher: cfg.Refresher,
		judge:     cfg.Judge,
		opts:      opts,
		log:       log,
	}, nil
}

// Options returns the tracker's scoring parameters.
func (t *Tracker) Options() Options {
	return t.opts
}

// RecordLookup counts a manual lookup of word unless one was already
// counted on the calendar day of now. It reports whether it counted.
func (t *Tracker) RecordLookup(ctx context.Context, word, language string, now time.Time) (WordRecord, bool, error) {
	key, err := NewKey(word, language)
	if err != nil {
		return WordRecord{}, false, err
	}

	unlock := t.locks.lock(key)
	defer unlock()

	r, err := t.load(ctx, key)
	if err != nil {
		return WordRecord{}, false, err
	}
	if !r.LastLookup.IsZero() && sameCalendarDay(r.LastLookup, now) {
		return r, false, nil
	}
	r.LookupCount = capCount(r.LookupCount+1, t.opts.MaxCount)
	r.LastLookup = now
	if err := t.store.Put(ctx, r); err != nil {
		return WordRecord{}, false, fmt.Errorf("failed to save lookup of %s: %w", key, err)
	}
	return r, true, nil
}

// RecordSeen counts one exposure of word.
func (t *Tracker) RecordSeen(ctx context.Context, word, language string) (WordRecord, error) {
	key, err := NewKey(word, language)
	if err != nil {
		return WordRecord{}, err
	}

	unlock := t.locks.lock(key)
	defer unlock()

	r, err := t.load(ctx, key)
	if err != nil {
		return WordRecord{}, err
	}
	r.SeenCount = capCount(r.SeenCount+1, t.opts.MaxCount)
	if err := t.store.Put(ctx, r); err != nil {
		return WordRecord{}, fmt.Errorf("failed to save exposure of %s: %w", key, err)
	}
	return r, nil
}

// Record returns the stored record, or an empty one for an unknown word.
func (t *Tracker) Record(ctx context.Context, word, language string) (WordRecord, error) {
	key, err := NewKey(word, language)
	if err != nil {
		return WordRecord{}, err
	}
	return t.load(ctx, key)
}

// RefreshStatus is the result kind of a refresh attempt.
type RefreshStatus int

const (
	// RefreshNotNeeded means the cached counts were still fresh.
	RefreshNotNeeded RefreshStatus = iota
	// RefreshUpdated means new counts were fetched and saved.
	RefreshUpdated
	// RefreshSkipped means the fetch failed and the record is unchanged.
	RefreshSkipped
	// RefreshDisabled means Anki evidence is turned off.
	RefreshDisabled
)

func (s RefreshStatus) String() string {
	switch s {
	case RefreshNotNeeded:
		return "fresh"
	case RefreshUpdated:
		return "updated"
	case RefreshSkipped:
		return "skipped"
	case RefreshDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// RefreshOutcome reports what a refresh did. Err is set only when Status
// is RefreshSkipped.
type RefreshOutcome struct {
	Status RefreshStatus
	Err    error
	Record WordRecord
}

// RefreshAnkiEvidence fetches the Anki counts for word and stores them
// with now as refresh time. Failures never reach the caller as errors: they
// come back as a skipped outcome and the stored record stays untouched.
func (t *Tracker) RefreshAnkiEvidence(ctx context.Context, word, language string, now time.Time) RefreshOutcome {
	key, err := NewKey(word, language)
	if err != nil {
		return RefreshOutcome{Status: RefreshSkipped, Err: err}
	}
	if t.refresher == nil || !t.opts.AnkiEnabled {
		r, err := t.load(ctx, key)
		if err != nil {
			return RefreshOutcome{Status: RefreshSkipped, Err: err, Record: NewRecord(key)}
		}
		return RefreshOutcome{Status: RefreshDisabled, Record: r}
	}

	v, err, _ := t.flight.Do(key.id(), func() (interface{}, error) {
		ev, err := t.refresher.Fetch(ctx, key.Word)
		if err != nil {
			return nil, err
		}

		unlock := t.locks.lock(key)
		defer unlock()

		r, err := t.load(ctx, key)
		if err != nil {
			return nil, err
		}
		r.AnkiMatureWordHits = capCount(ev.MatureWord, t.opts.MaxCount)
		r.AnkiMatureContextHits = capCount(ev.MatureContext, t.opts.MaxCount)
		r.AnkiYoungWordHits = capCount(ev.YoungWord, t.opts.MaxCount)
		r.AnkiYoungContextHits = capCount(ev.YoungContext, t.opts.MaxCount)
		r.AnkiRefreshedAt = now
		if err := t.store.Put(ctx, r); err != nil {
			return nil, fmt.Errorf("failed to save evidence of %s: %w", key, err)
		}
		return r, nil
	})
	if err != nil {
		t.log.Warn("anki refresh skipped",
			zap.String("word", key.Word),
			zap.String("language", key.Language),
			zap.Bool("connection", errors.Is(err, domain.ErrConnection)),
			zap.Error(err))
		r, loadErr := t.load(ctx, key)
		if loadErr != nil {
			r = NewRecord(key)
		}
		return RefreshOutcome{Status: RefreshSkipped, Err: err, Record: r}
	}
	return RefreshOutcome{Status: RefreshUpdated, Record: v.(WordRecord)}
}

// Assessment is the classification of one word.
type Assessment struct {
	Record    WordRecord
	Score     int
	Cognate   bool
	Threshold int
	Known     bool
	Refresh   RefreshOutcome
}

// Evaluate refreshes stale Anki evidence and classifies word. Only store
// failures are returned as errors.
func (t *Tracker) Evaluate(ctx context.Context, word, language string, now time.Time) (Assessment, error) {
	key, err := NewKey(word, language)
	if err != nil {
		return Assessment{}, err
	}
	r, err := t.load(ctx, key)
	if err != nil {
		return Assessment{}, err
	}

	outcome := RefreshOutcome{Status: RefreshNotNeeded, Record: r}
	if !r.Fresh(t.opts.DataLifetime, now) {
		outcome = t.RefreshAnkiEvidence(ctx, key.Word, key.Language, now)
		if outcome.Status == RefreshUpdated {
			r = outcome.Record
		}
	}
	a := t.Assess(ctx, r)
	a.Refresh = outcome
	return a, nil
}

// Assess scores and classifies r without touching the store or Anki.
func (t *Tracker) Assess(ctx context.Context, r WordRecord) Assessment {
	cognate := IsCognate(ctx, r, t.opts.KnownLanguages, t.judge)
	threshold := t.opts.Thresholds.Known
	if cognate {
		threshold = t.opts.Thresholds.KnownCognate
	}
	score := ComputeScore(r, t.opts.Weights)
	return Assessment{
		Record:    r,
		Score:     score,
		Cognate:   cognate,
		Threshold: threshold,
		Known:     score >= threshold,
		Refresh:   RefreshOutcome{Status: RefreshNotNeeded, Record: r},
	}
}

// Score returns the current score of word without refreshing evidence.
func (t *Tracker) Score(ctx context.Context, word, language string) (int, error) {
	r, err := t.Record(ctx, word, language)
	if err != nil {
		return 0, err
	}
	return ComputeScore(r, t.opts.Weights), nil
}

// Known classifies word from stored evidence without refreshing it.
func (t *Tracker) Known(ctx context.Context, word, language string) (bool, error) {
	r, err := t.Record(ctx, word, language)
	if err != nil {
		return false, err
	}
	return IsKnown(ctx, r, t.opts.Weights, t.opts.Thresholds, t.opts.KnownLanguages, t.judge), nil
}

// Reset deletes every record.
func (t *Tracker) Reset(ctx context.Context) error {
	if err := t.store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset records: %w", err)
	}
	return nil
}

func (t *Tracker) load(ctx context.Context, key Key) (WordRecord, error) {
	r, ok, err := t.store.Get(ctx, key)
	if err != nil {
		return WordRecord{}, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok {
		return NewRecord(key), nil
	}
	return r, nil
}

// keyedMutex hands out one mutex per record key.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[Key]*sync.Mutex
}

func (k *keyedMutex) lock(key Key) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[Key]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
