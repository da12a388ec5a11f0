package cognate

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIConfig configures the OpenAI judge.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // optional, for compatible endpoints
	Logger  *zap.Logger
}

// OpenAI asks a chat model for a yes/no verdict.
type OpenAI struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

// NewOpenAI creates an OpenAI judge.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		log:    cfg.Logger.With(zap.String("judge", "openai")),
	}, nil
}

// IsCognate implements tracking.CognateJudge. API errors count as "not a
// cognate".
func (o *OpenAI) IsCognate(ctx context.Context, word, language string, knownLanguages []string) bool {
	v, err := o.verdict(ctx, word, language, knownLanguages)
	if err != nil {
		o.log.Warn("cognate check failed", zap.String("word", word), zap.Error(err))
		return false
	}
	return v
}

func (o *OpenAI) verdict(ctx context.Context, word, language string, knownLanguages []string) (bool, error) {
	if len(knownLanguages) == 0 {
		return false, nil
	}
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt(word, language, knownLanguages),
			},
		},
		MaxTokens:   5,
		Temperature: 0,
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return false, err
	}
	if len(resp.Choices) == 0 {
		return false, fmt.Errorf("no answer from %s", o.model)
	}
	return parseVerdict(resp.Choices[0].Message.Content), nil
}
