package cognate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"codeberg.org/snonux/wordsieve/internal/config"
	"codeberg.org/snonux/wordsieve/internal/tracking"
)

// None never reports a cognate.
type None struct{}

// IsCognate implements tracking.CognateJudge.
func (None) IsCognate(context.Context, string, string, []string) bool {
	return false
}

// FromSettings builds the judge selected by s.Judge. LLM judges are
// wrapped in a cache.
func FromSettings(ctx context.Context, s config.CognateSettings, knownLanguages []string, log *zap.Logger) (tracking.CognateJudge, error) {
	switch s.Judge {
	case "", config.JudgeNone:
		return None{}, nil
	case config.JudgeLexicon:
		return LoadLexicon(s.LexiconDir, knownLanguages, s.MinSimilarity, log)
	case config.JudgeOpenAI:
		j, err := NewOpenAI(OpenAIConfig{APIKey: s.OpenAIKey, Model: s.OpenAIModel, Logger: log})
		if err != nil {
			return nil, err
		}
		return NewCached(j, log), nil
	case config.JudgeGemini:
		j, err := NewGemini(ctx, GeminiConfig{APIKey: s.GeminiKey, Model: s.GeminiModel, Logger: log})
		if err != nil {
			return nil, err
		}
		return NewCached(j, log), nil
	default:
		return nil, fmt.Errorf("unknown cognate judge %q", s.Judge)
	}
}

func prompt(word, language string, knownLanguages []string) string {
	return fmt.Sprintf("Is the %s word %q a cognate of a word with the same meaning in any of these languages: %s? "+
		"A cognate is spelled similarly enough that a speaker of that language would recognize it. "+
		"Answer with only yes or no.",
		language, word, strings.Join(knownLanguages, ", "))
}

// parseVerdict accepts answers like "Yes", "yes." or "YES, because ...".
func parseVerdict(answer string) bool {
	fields := strings.Fields(strings.ToLower(answer))
	if len(fields) == 0 {
		return false
	}
	return strings.TrimRight(fields[0], ".,!:;") == "yes"
}
