package processor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"codeberg.org/snonux/wordsieve/internal/anki"
	"codeberg.org/snonux/wordsieve/internal/audio"
	"codeberg.org/snonux/wordsieve/internal/cli"
	"codeberg.org/snonux/wordsieve/internal/cognate"
	"codeberg.org/snonux/wordsieve/internal/config"
	"codeberg.org/snonux/wordsieve/internal/logging"
	"codeberg.org/snonux/wordsieve/internal/store"
	"codeberg.org/snonux/wordsieve/internal/tracking"
)

// Processor runs the wordsieve commands.
type Processor struct {
	flags    *cli.Flags
	config   *config.Store
	settings config.Settings
	log      *zap.Logger
	out      io.Writer

	records  *store.SQLiteStore
	anki     *anki.Client // nil when Anki is disabled
	tracker  *tracking.Tracker
	resolver *audio.Resolver
	player   *audio.Player

	now func() time.Time
}

var _ cli.Actions = (*Processor)(nil)

// Options customize Open.
type Options struct {
	Out    io.Writer
	Logger *zap.Logger // overrides the logger built from settings
	Player *audio.Player
	Now    func() time.Time
}

// Open loads the settings from v and opens everything the commands need.
func Open(ctx context.Context, flags *cli.Flags, v *viper.Viper, opts Options) (*Processor, error) {
	config.RegisterDefaults(v)
	settings, errs := config.Load(v)

	log := opts.Logger
	if log == nil {
		var err error
		log, err = logging.New(settings.LogLevel, settings.LogFormat)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}
	for _, err := range errs {
		log.Warn("invalid setting", zap.Error(err))
	}

	cfg := config.NewStore(v, cli.ConfigPath(flags.CfgFile), log)
	if cfg.Migrate() {
		if err := cfg.Save(); err != nil {
			log.Warn("failed to save migrated settings", zap.Error(err))
		}
		settings = cfg.Settings()
	}

	records, err := store.Open(filepath.Join(settings.DataDir, store.FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open records: %w", err)
	}

	p := &Processor{
		flags:    flags,
		config:   cfg,
		settings: settings,
		log:      log,
		out:      opts.Out,
		records:  records,
		player:   opts.Player,
		now:      opts.Now,
	}
	if p.out == nil {
		p.out = io.Discard
	}
	if p.player == nil {
		p.player = &audio.Player{}
	}
	if p.now == nil {
		p.now = time.Now
	}

	var refresher *tracking.Refresher
	if settings.EnableAnki {
		p.anki = anki.NewClient(anki.Config{
			Endpoint: settings.AnkiAPI,
			Timeout:  settings.AnkiTimeout,
			Logger:   log,
		})
		refresher = tracking.NewRefresher(p.anki, settings.Queries(), settings.AnkiTimeout)
	}

	judge, err := cognate.FromSettings(ctx, settings.Cognate, settings.Tracking.KnownLanguages, log)
	if err != nil {
		log.Warn("cognate judge unavailable, treating no word as cognate",
			zap.String("judge", settings.Cognate.Judge), zap.Error(err))
		judge = cognate.None{}
	}

	p.tracker, err = tracking.NewTracker(&tracking.Config{
		Store:     records,
		Refresher: refresher,
		Judge:     judge,
		Options:   settings.TrackingOptions(),
		Logger:    log,
	})
	if err != nil {
		records.Close()
		return nil, err
	}

	var synth audio.Synthesizer
	if settings.Audio.TTS {
		s, err := audio.NewOpenAISynthesizer(audio.OpenAIConfig{
			APIKey: settings.Cognate.OpenAIKey,
			Model:  settings.Audio.OpenAIModel,
			Voice:  settings.Audio.OpenAIVoice,
			Logger: log,
		})
		if err != nil {
			log.Warn("speech synthesis disabled", zap.Error(err))
		} else {
			synth = s
		}
	}
	p.resolver = audio.NewResolver(audio.ResolverConfig{
		CacheDir: settings.Audio.CacheDir,
		Synth:    synth,
		Logger:   log,
	})

	return p, nil
}

// Settings returns the settings in use.
func (p *Processor) Settings() config.Settings {
	return p.settings
}

// Close releases the record store.
func (p *Processor) Close() error {
	p.log.Sync()
	if p.records == nil {
		return nil
	}
	err := p.records.Close()
	p.records = nil
	return err
}

// language is the language of the words in this run.
func (p *Processor) language() string {
	return p.settings.TargetLanguage
}

func (p *Processor) printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}
