package processor

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"codeberg.org/snonux/wordsieve/internal/batch"
	"codeberg.org/snonux/wordsieve/internal/tracking"
)

// Lookup records a dictionary lookup and prints the updated assessment.
// With --play the first resolvable audio source is played.
func (p *Processor) Lookup(ctx context.Context, word string) error {
	r, counted, err := p.tracker.RecordLookup(ctx, word, p.language(), p.now())
	if err != nil {
		return err
	}
	if counted {
		p.printf("Recorded lookup of %q (%d lookups)\n", r.Word, r.LookupCount)
	} else {
		p.printf("Lookup of %q already counted today\n", r.Word)
	}

	a := p.tracker.Assess(ctx, r)
	p.printAssessment(a)

	if p.flags.Play {
		return p.play(ctx, r.Word)
	}
	return nil
}

// play resolves the --audio sources of word and plays the first one that
// resolves. Without any source the synthesizer is tried.
func (p *Processor) play(ctx context.Context, word string) error {
	names, sources := p.flags.AudioSources()
	if len(names) == 0 {
		names, sources = []string{word}, nil
	}

	var path string
	for _, name := range names {
		var src map[string]string
		if sources != nil {
			src = map[string]string{name: sources[name]}
		}
		if path = p.resolver.Resolve(ctx, name, src, p.language()); path != "" {
			break
		}
	}
	if path == "" {
		return fmt.Errorf("no playable audio for %q", word)
	}

	p.log.Debug("playing audio", zap.String("file", path))
	return p.player.Play(ctx, path).Wait()
}

// Seen records one exposure per word.
func (p *Processor) Seen(ctx context.Context, words []string) error {
	var errs []error
	for _, word := range words {
		r, err := p.tracker.RecordSeen(ctx, word, p.language())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		p.printf("%s\tseen %d\n", r.Word, r.SeenCount)
	}
	return errors.Join(errs...)
}

// Score prints the score of each word.
func (p *Processor) Score(ctx context.Context, words []string) error {
	return p.assess(ctx, words, func(a tracking.Assessment) {
		p.printf("%s\t%d\t(threshold %d%s)\n", a.Record.Word, a.Score, a.Threshold, cognateNote(a.Cognate))
	})
}

// Known prints whether each word is known.
func (p *Processor) Known(ctx context.Context, words []string) error {
	return p.assess(ctx, words, func(a tracking.Assessment) {
		verdict := "unknown"
		if a.Known {
			verdict = "known"
		}
		p.printf("%s\t%s\n", a.Record.Word, verdict)
	})
}

// assess evaluates the words from args and --batch concurrently and
// prints the results in input order.
func (p *Processor) assess(ctx context.Context, words []string, report func(tracking.Assessment)) error {
	entries, err := p.entries(words)
	if err != nil {
		return err
	}

	results := make([]tracking.Assessment, len(entries))
	failed := make([]error, len(entries))
	var mu sync.Mutex
	skipped := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			a, err := p.evaluate(gctx, e)
			if err != nil {
				failed[i] = err
				return nil
			}
			if a.Refresh.Status == tracking.RefreshSkipped {
				mu.Lock()
				skipped++
				mu.Unlock()
			}
			results[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var errs []error
	for i, e := range entries {
		if failed[i] != nil {
			p.printf("%s\terror: %v\n", e.Word, failed[i])
			errs = append(errs, failed[i])
			continue
		}
		report(results[i])
	}
	if skipped > 0 {
		p.printf("Anki evidence could not be refreshed for %d word(s); using stored counts\n", skipped)
	}
	return errors.Join(errs...)
}

// evaluate classifies one entry, forcing a refresh with --refresh.
func (p *Processor) evaluate(ctx context.Context, e batch.WordEntry) (tracking.Assessment, error) {
	now := p.now()
	if !p.flags.Refresh {
		return p.tracker.Evaluate(ctx, e.Word, e.Language, now)
	}
	if _, err := tracking.NewKey(e.Word, e.Language); err != nil {
		return tracking.Assessment{}, err
	}
	outcome := p.tracker.RefreshAnkiEvidence(ctx, e.Word, e.Language, now)
	a := p.tracker.Assess(ctx, outcome.Record)
	a.Refresh = outcome
	return a, nil
}

// entries merges the command arguments with the --batch word list.
func (p *Processor) entries(words []string) ([]batch.WordEntry, error) {
	entries := make([]batch.WordEntry, 0, len(words))
	for _, w := range words {
		entries = append(entries, batch.WordEntry{Word: w, Language: p.language()})
	}
	if p.flags.BatchFile != "" {
		list, err := batch.ReadWordList(p.flags.BatchFile, p.language())
		if err != nil {
			return nil, err
		}
		entries = append(entries, list...)
	}
	return entries, nil
}

// Refresh fetches the Anki evidence of word now.
func (p *Processor) Refresh(ctx context.Context, word string) error {
	outcome := p.tracker.RefreshAnkiEvidence(ctx, word, p.language(), p.now())
	switch outcome.Status {
	case tracking.RefreshDisabled:
		p.printf("Anki is disabled; nothing to refresh\n")
		return nil
	case tracking.RefreshSkipped:
		return fmt.Errorf("refresh of %q skipped: %w", word, outcome.Err)
	}
	r := outcome.Record
	p.printf("%s\tmature %d/%d\tyoung %d/%d (word/context)\n", r.Word,
		r.AnkiMatureWordHits, r.AnkiMatureContextHits, r.AnkiYoungWordHits, r.AnkiYoungContextHits)
	return nil
}

func (p *Processor) printAssessment(a tracking.Assessment) {
	verdict := "unknown"
	if a.Known {
		verdict = "known"
	}
	p.printf("Score: %d / %d%s -> %s\n", a.Score, a.Threshold, cognateNote(a.Cognate), verdict)
}

func cognateNote(cognate bool) string {
	if cognate {
		return ", cognate"
	}
	return ""
}
