package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Synthesizer generates speech for text and saves it to outputFile.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language, outputFile string) error
	Name() string
}

// OpenAIConfig configures OpenAI text-to-speech.
type OpenAIConfig struct {
	APIKey  string
	Model   string  // "tts-1", "tts-1-hd" or "gpt-4o-mini-tts"
	Voice   string  // "alloy", "ash", "coral", "echo", "nova", ...
	Speed   float64 // 0.25 to 4.0; 0 means 1.0
	BaseURL string  // optional, for compatible endpoints
	Logger  *zap.Logger
}

// OpenAISynthesizer implements Synthesizer with OpenAI TTS.
type OpenAISynthesizer struct {
	client *openai.Client
	config OpenAIConfig
	log    *zap.Logger
}

// NewOpenAISynthesizer creates an OpenAI TTS synthesizer.
func NewOpenAISynthesizer(cfg OpenAIConfig) (*OpenAISynthesizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini-tts"
	}
	if cfg.Voice == "" {
		cfg.Voice = "alloy"
	}
	if cfg.Speed == 0 {
		cfg.Speed = 1.0
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAISynthesizer{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		log:    cfg.Logger.With(zap.String("tts", "openai")),
	}, nil
}

// Name returns the synthesizer name
func (s *OpenAISynthesizer) Name() string {
	return "openai"
}

// Synthesize generates speech using OpenAI TTS.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text, language, outputFile string) error {
	if err := ValidateText(text); err != nil {
		return err
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.config.Model),
		Input:          strings.TrimSpace(text),
		Voice:          openai.SpeechVoice(s.config.Voice),
		Speed:          s.config.Speed,
		ResponseFormat: responseFormat(outputFile),
	}
	// Only the gpt-4o models accept voice instructions.
	if strings.HasPrefix(s.config.Model, "gpt-4o") && language != "" {
		req.Instructions = fmt.Sprintf("Pronounce the text as a native speaker of the language with code %q. Speak slowly and clearly for language learners.", language)
	}

	s.log.Debug("synthesizing speech",
		zap.String("model", s.config.Model),
		zap.String("voice", s.config.Voice),
		zap.String("language", language))

	response, err := s.client.CreateSpeech(ctx, req)
	if err != nil {
		return fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	written, err := writeAtomic(outputFile, response)
	if err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if written == 0 {
		return fmt.Errorf("no audio data received from OpenAI")
	}
	return nil
}

func responseFormat(outputFile string) openai.SpeechResponseFormat {
	switch strings.ToLower(filepath.Ext(outputFile)) {
	case ".wav":
		return openai.SpeechResponseFormatWav
	case ".opus":
		return openai.SpeechResponseFormatOpus
	case ".aac":
		return openai.SpeechResponseFormatAac
	case ".flac":
		return openai.SpeechResponseFormatFlac
	default:
		return openai.SpeechResponseFormatMp3
	}
}

// writeAtomic copies r into path through a temporary file in the same
// directory, so readers never see a partial file.
func writeAtomic(path string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".partial-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return written, err
	}
	if written == 0 {
		return 0, nil
	}
	return written, os.Rename(tmp.Name(), path)
}
