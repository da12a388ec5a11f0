package cognate

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"codeberg.org/snonux/wordsieve/internal/domain"
	"codeberg.org/snonux/wordsieve/internal/tracking"
)

// fallibleJudge is a judge that can tell a failed check from a "no".
type fallibleJudge interface {
	verdict(ctx context.Context, word, language string, knownLanguages []string) (bool, error)
}

// Cached memoizes the verdicts of another judge for the life of the
// process. Concurrent checks of the same word share one call. Failed and
// cancelled checks are not cached.
type Cached struct {
	judge tracking.CognateJudge
	log   *zap.Logger

	mu       sync.RWMutex
	verdicts map[string]bool
	flight   singleflight.Group
}

// NewCached wraps judge. log may be nil.
func NewCached(judge tracking.CognateJudge, log *zap.Logger) *Cached {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{judge: judge, log: log, verdicts: make(map[string]bool)}
}

// cacheKey joins the parts with NUL so that no word or language code can
// run into its neighbour.
func cacheKey(word, language string, knownLanguages []string) string {
	parts := append([]string{domain.NormalizeLanguage(language), domain.NormalizeWord(word)}, knownLanguages...)
	return strings.Join(parts, "\x00")
}

// IsCognate implements tracking.CognateJudge.
func (c *Cached) IsCognate(ctx context.Context, word, language string, knownLanguages []string) bool {
	key := cacheKey(word, language, knownLanguages)

	c.mu.RLock()
	v, ok := c.verdicts[key]
	c.mu.RUnlock()
	if ok {
		return v
	}

	res, _, _ := c.flight.Do(key, func() (interface{}, error) {
		verdict, err := c.check(ctx, word, language, knownLanguages)
		// A failed or cancelled check says nothing about the word.
		if err == nil && ctx.Err() == nil {
			c.mu.Lock()
			c.verdicts[key] = verdict
			c.mu.Unlock()
		}
		return verdict, nil
	})
	return res.(bool)
}

func (c *Cached) check(ctx context.Context, word, language string, knownLanguages []string) (bool, error) {
	if f, ok := c.judge.(fallibleJudge); ok {
		v, err := f.verdict(ctx, word, language, knownLanguages)
		if err != nil {
			c.log.Warn("cognate check failed", zap.String("word", word), zap.Error(err))
			return false, err
		}
		return v, nil
	}
	return c.judge.IsCognate(ctx, word, language, knownLanguages), nil
}
