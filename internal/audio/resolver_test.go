package audio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTLSAudioServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/gato.mp3":
			w.Write([]byte{0xFF, 0xFB, 0x90, 0x00})
		case "/empty.mp3":
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestResolve_DownloadsOnceIntoLanguageCache(t *testing.T) {
	srv, hits := newTLSAudioServer(t)
	cache := t.TempDir()
	r := NewResolver(ResolverConfig{CacheDir: cache, HTTPClient: srv.Client()})
	sources := map[string]string{"gato.mp3": srv.URL + "/gato.mp3"}
	ctx := context.Background()

	got := r.Resolve(ctx, "gato.mp3", sources, "es")
	want := filepath.Join(cache, "es", "gato.mp3")
	require.Equal(t, want, got)
	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFB, 0x90, 0x00}, data)

	assert.Equal(t, want, r.Resolve(ctx, "gato.mp3", sources, "es"))
	assert.Equal(t, int32(1), hits.Load(), "cached file must not be downloaded again")
}

func TestResolve_ExtensionFromURL(t *testing.T) {
	srv, _ := newTLSAudioServer(t)
	cache := t.TempDir()
	r := NewResolver(ResolverConfig{CacheDir: cache, HTTPClient: srv.Client()})

	got := r.Resolve(context.Background(), "forvo/user1", map[string]string{"forvo/user1": srv.URL + "/gato.mp3"}, "es")
	assert.Equal(t, filepath.Join(cache, "es", "forvo_user1.mp3"), got)
}

func TestResolve_FailuresReturnEmpty(t *testing.T) {
	srv, _ := newTLSAudioServer(t)
	r := NewResolver(ResolverConfig{CacheDir: t.TempDir(), HTTPClient: srv.Client()})
	ctx := context.Background()

	tests := []struct {
		name    string
		sources map[string]string
	}{
		{"no source", map[string]string{}},
		{"not found", map[string]string{"x": srv.URL + "/missing.mp3"}},
		{"empty body", map[string]string{"x": srv.URL + "/empty.mp3"}},
		{"unreachable", map[string]string{"x": "https://127.0.0.1:1/x.mp3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "", r.Resolve(ctx, "x", tt.sources, "es"))
		})
	}
}

func TestResolve_LocalPathReturnedAsIs(t *testing.T) {
	r := NewResolver(ResolverConfig{CacheDir: t.TempDir()})

	got := r.Resolve(context.Background(), "gato", map[string]string{"gato": "/music/gato.ogg"}, "es")
	assert.Equal(t, "/music/gato.ogg", got)
}

func TestResolve_ConcurrentDownloadsShareOneRequest(t *testing.T) {
	srv, hits := newTLSAudioServer(t)
	r := NewResolver(ResolverConfig{CacheDir: t.TempDir(), HTTPClient: srv.Client()})
	sources := map[string]string{"gato.mp3": srv.URL + "/gato.mp3"}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotEmpty(t, r.Resolve(context.Background(), "gato.mp3", sources, "es"))
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, hits.Load(), int32(10))
	assert.GreaterOrEqual(t, hits.Load(), int32(1))
}

type fakeSynth struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSynth) Name() string { return "fake" }

func (f *fakeSynth) Synthesize(_ context.Context, text, _ string, outputFile string) error {
	f.calls.Add(1)
	if f.err != nil {
		return f.err
	}
	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return err
	}
	return os.WriteFile(outputFile, []byte("audio:"+text), 0644)
}

func TestResolve_SynthesizesMissingSource(t *testing.T) {
	cache := t.TempDir()
	synth := &fakeSynth{}
	r := NewResolver(ResolverConfig{CacheDir: cache, Synth: synth})
	ctx := context.Background()

	got := r.Resolve(ctx, "gato", nil, "es")
	assert.Equal(t, filepath.Join(cache, "tts", "es", "gato.mp3"), got)
	assert.Equal(t, got, r.Resolve(ctx, "gato", nil, "es"))
	assert.Equal(t, int32(1), synth.calls.Load())
}

func TestResolve_SynthesisFailureReturnsEmpty(t *testing.T) {
	r := NewResolver(ResolverConfig{CacheDir: t.TempDir(), Synth: &fakeSynth{err: errors.New("quota")}})

	assert.Equal(t, "", r.Resolve(context.Background(), "gato", nil, "es"))
}
