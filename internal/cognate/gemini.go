package cognate

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiConfig configures the Gemini judge.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for tests and proxies
	Logger  *zap.Logger
}

// Gemini asks a Gemini model for a yes/no verdict.
type Gemini struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// NewGemini creates a Gemini judge.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key not found")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{
		client: client,
		model:  cfg.Model,
		log:    cfg.Logger.With(zap.String("judge", "gemini")),
	}, nil
}

// IsCognate implements tracking.CognateJudge. API errors count as "not a
// cognate".
func (g *Gemini) IsCognate(ctx context.Context, word, language string, knownLanguages []string) bool {
	v, err := g.verdict(ctx, word, language, knownLanguages)
	if err != nil {
		g.log.Warn("cognate check failed", zap.String("word", word), zap.Error(err))
		return false
	}
	return v
}

func (g *Gemini) verdict(ctx context.Context, word, language string, knownLanguages []string) (bool, error) {
	if len(knownLanguages) == 0 {
		return false, nil
	}
	temperature := float32(0)
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt(word, language, knownLanguages)),
		&genai.GenerateContentConfig{Temperature: &temperature, MaxOutputTokens: 5})
	if err != nil {
		return false, err
	}
	return parseVerdict(resp.Text()), nil
}
