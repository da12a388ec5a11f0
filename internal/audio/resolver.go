// Package audio resolves pronunciation audio for words, caching remote
// files per language, and plays it back.
package audio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"codeberg.org/snonux/wordsieve/internal"
)

// ResolverConfig configures a Resolver.
type ResolverConfig struct {
	CacheDir   string
	HTTPClient *http.Client
	Synth      Synthesizer // optional; generates audio for names without a source
	Logger     *zap.Logger
}

// Resolver turns audio names into local file paths.
type Resolver struct {
	cacheDir string
	http     *http.Client
	synth    Synthesizer
	log      *zap.Logger
	flight   singleflight.Group
}

// NewResolver creates a resolver.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Resolver{
		cacheDir: cfg.CacheDir,
		http:     cfg.HTTPClient,
		synth:    cfg.Synth,
		log:      cfg.Logger.With(zap.String("component", "audio")),
	}
}

// Resolve returns a playable local path for name, or "" when there is
// none. sources maps names to https URLs or local paths. Remote files are
// downloaded once into <cache>/<lang>/. Failures are logged, never
// returned.
func (r *Resolver) Resolve(ctx context.Context, name string, sources map[string]string, lang string) string {
	source := strings.TrimSpace(sources[name])
	if source == "" {
		if r.synth != nil && strings.TrimSpace(name) != "" {
			return r.synthesize(ctx, name, lang)
		}
		return ""
	}

	if !strings.HasPrefix(source, "https://") {
		return source
	}

	target := r.cachePath(lang, name, source)
	if fileExists(target) {
		return target
	}

	v, _, _ := r.flight.Do(target, func() (interface{}, error) {
		if fileExists(target) {
			return target, nil
		}
		if err := r.download(ctx, source, target); err != nil {
			r.log.Warn("audio download failed",
				zap.String("name", name),
				zap.String("url", source),
				zap.Error(err))
			return "", nil
		}
		return target, nil
	})
	return v.(string)
}

// cachePath returns where a remote source for name is cached.
func (r *Resolver) cachePath(lang, name, source string) string {
	file := internal.SanitizeFilename(name)
	if filepath.Ext(file) == "" {
		if u, err := url.Parse(source); err == nil {
			file += path.Ext(u.Path)
		}
	}
	return filepath.Join(r.cacheDir, internal.SanitizeFilename(lang), file)
}

func (r *Resolver) download(ctx context.Context, source, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	written, err := writeAtomic(target, resp.Body)
	if err != nil {
		return err
	}
	if written == 0 {
		return fmt.Errorf("empty response")
	}
	r.log.Debug("audio cached", zap.String("path", target), zap.Int64("bytes", written))
	return nil
}

func (r *Resolver) synthesize(ctx context.Context, text, lang string) string {
	target := filepath.Join(r.cacheDir, "tts", internal.SanitizeFilename(lang), internal.SanitizeFilename(text)+".mp3")
	if fileExists(target) {
		return target
	}

	v, _, _ := r.flight.Do(target, func() (interface{}, error) {
		if err := r.synth.Synthesize(ctx, text, lang, target); err != nil {
			r.log.Warn("speech synthesis failed",
				zap.String("text", text),
				zap.String("synthesizer", r.synth.Name()),
				zap.Error(err))
			return "", nil
		}
		return target, nil
	})
	return v.(string)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}
