package audio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAISynthesizer(t *testing.T) {
	_, err := NewOpenAISynthesizer(OpenAIConfig{})
	require.Error(t, err)
	assert.Equal(t, "OpenAI API key is required", err.Error())

	s, err := NewOpenAISynthesizer(OpenAIConfig{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, "openai", s.Name())
	assert.Equal(t, "gpt-4o-mini-tts", s.config.Model)
	assert.Equal(t, "alloy", s.config.Voice)
	assert.Equal(t, 1.0, s.config.Speed)
}

func TestOpenAISynthesizer_Synthesize(t *testing.T) {
	var got openai.CreateSpeechRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte{0xFF, 0xFB})
	}))
	t.Cleanup(srv.Close)

	s, err := NewOpenAISynthesizer(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	out := filepath.Join(t.TempDir(), "tts", "es", "gato.mp3")

	require.NoError(t, s.Synthesize(context.Background(), " gato ", "es", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFB}, data)
	assert.Equal(t, "gato", got.Input)
	assert.Equal(t, openai.SpeechResponseFormatMp3, got.ResponseFormat)
	assert.Contains(t, got.Instructions, `"es"`)
}

func TestOpenAISynthesizer_RejectsInvalidText(t *testing.T) {
	s, err := NewOpenAISynthesizer(OpenAIConfig{APIKey: "test-key", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	assert.Error(t, s.Synthesize(context.Background(), "123", "es", filepath.Join(t.TempDir(), "x.mp3")))
}

func TestResponseFormat(t *testing.T) {
	tests := map[string]openai.SpeechResponseFormat{
		"a.mp3":  openai.SpeechResponseFormatMp3,
		"a.WAV":  openai.SpeechResponseFormatWav,
		"a.flac": openai.SpeechResponseFormatFlac,
		"a":      openai.SpeechResponseFormatMp3,
	}
	for file, want := range tests {
		assert.Equal(t, want, responseFormat(file), file)
	}
}
