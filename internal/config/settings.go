package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"codeberg.org/snonux/wordsieve/internal/domain"
	"codeberg.org/snonux/wordsieve/internal/tracking"
)

// Settings is the typed view of all settings.
type Settings struct {
	EnableAnki  bool
	AnkiAPI     string
	AnkiTimeout time.Duration
	DeckName    string
	Tags        []string
	NoteType    string
	Fields      NoteFields

	TargetLanguage string

	Tracking TrackingSettings
	Cognate  CognateSettings
	Audio    AudioSettings

	DataDir   string
	LogLevel  string
	LogFormat string
	ConfigVer int
}

// NoteFields maps note roles to field names of the configured note type.
// A field set to Disabled is not exported.
type NoteFields struct {
	Sentence      string
	Word          string
	Frequency     string
	Definition1   string
	Definition2   string
	Pronunciation string
	Image         string
}

// TrackingSettings configures word-knowledge scoring.
type TrackingSettings struct {
	QueryMature           string
	QueryYoung            string
	KnownThreshold        int
	KnownThresholdCognate int
	KnownLanguages        []string
	Weights               tracking.Weights
	DataLifetime          time.Duration
	MaxCount              int
}

// CognateSettings selects and configures the cognate judge.
type CognateSettings struct {
	Judge         string
	LexiconDir    string
	MinSimilarity float64
	OpenAIModel   string
	GeminiModel   string
	OpenAIKey     string
	GeminiKey     string
}

// AudioSettings configures audio resolution.
type AudioSettings struct {
	CacheDir    string
	TTS         bool
	OpenAIModel string
	OpenAIVoice string
}

// Defaults returns the settings with every key at its default.
func Defaults() Settings {
	v := viper.New()
	RegisterDefaults(v)
	s, _ := Load(v)
	return s
}

// RegisterDefaults registers every key's default with v.
func RegisterDefaults(v *viper.Viper) {
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
}

// Load reads the settings from v. Invalid values fall back to their
// defaults; each one is reported as a *domain.ConfigError.
func Load(v *viper.Viper) (Settings, []error) {
	l := &loader{v: v}
	var s Settings

	s.EnableAnki = l.bool(KeyEnableAnki)
	s.AnkiAPI = l.url(KeyAnkiAPI)
	s.AnkiTimeout = l.duration(KeyAnkiTimeout, 100*time.Millisecond, time.Minute)
	s.DeckName = l.str(KeyDeckName, true)
	s.Tags = strings.Fields(l.str(KeyTags, false))
	s.NoteType = l.str(KeyNoteType, true)
	s.Fields = NoteFields{
		Sentence:      l.str(KeySentenceField, true),
		Word:          l.str(KeyWordField, true),
		Frequency:     l.str(KeyFrequencyField, false),
		Definition1:   l.str(KeyDefinition1Field, false),
		Definition2:   l.str(KeyDefinition2Field, false),
		Pronunciation: l.str(KeyPronunciationField, false),
		Image:         l.str(KeyImageField, false),
	}
	s.TargetLanguage = domain.NormalizeLanguage(l.str(KeyTargetLanguage, true))

	s.Tracking = TrackingSettings{
		QueryMature:           l.str(KeyQueryMature, true),
		QueryYoung:            l.str(KeyQueryYoung, true),
		KnownThreshold:        l.intRange(KeyKnownThreshold, 0, 1000),
		KnownThresholdCognate: l.intRange(KeyKnownThresholdCognate, 0, 1000),
		KnownLanguages:        l.languages(KeyKnownLangs),
		Weights: tracking.Weights{
			Seen:             l.intRange(KeyWSeen, 0, 1000),
			Lookup:           l.intRange(KeyWLookup, 0, 1000),
			AnkiWord:         l.intRange(KeyWAnkiWord, 0, 1000),
			AnkiContext:      l.intRange(KeyWAnkiCtx, 0, 1000),
			AnkiWordYoung:    l.intRange(KeyWAnkiWordYoung, 0, 1000),
			AnkiContextYoung: l.intRange(KeyWAnkiCtxYoung, 0, 1000),
			Saturate:         l.bool(KeySaturateExposure),
		},
		DataLifetime: time.Duration(l.intRange(KeyDataLifetime, 0, 31536000)) * time.Second,
		MaxCount:     l.intRange(KeyMaxCount, 1, 1000000),
	}

	s.DataDir = l.str(KeyDataDir, true)
	s.Cognate = CognateSettings{
		Judge:         l.oneOf(KeyCognateJudge, JudgeNone, JudgeLexicon, JudgeOpenAI, JudgeGemini),
		LexiconDir:    l.path(KeyLexiconDir, s.DataDir, "lexicon"),
		MinSimilarity: l.floatRange(KeyMinSimilarity, 0, 1),
		OpenAIModel:   l.str(KeyCognateOpenAIModel, true),
		GeminiModel:   l.str(KeyCognateGeminiModel, true),
		OpenAIKey:     secret("OPENAI_API_KEY", l.str(KeyOpenAIKey, false)),
		GeminiKey:     secret("GEMINI_API_KEY", l.str(KeyGeminiKey, false)),
	}
	s.Audio = AudioSettings{
		CacheDir:    l.path(KeyAudioCacheDir, s.DataDir, "forvo"),
		TTS:         l.bool(KeyAudioTTS),
		OpenAIModel: l.str(KeyAudioOpenAIModel, true),
		OpenAIVoice: l.str(KeyAudioOpenAIVoice, true),
	}

	s.LogLevel = l.oneOf(KeyLogLevel, "debug", "info", "warn", "error")
	s.LogFormat = l.oneOf(KeyLogFormat, "console", "json")
	s.ConfigVer = l.intRange(KeyConfigVer, 0, CurrentConfigVersion)

	return s, l.errs
}

// TrackingOptions converts s into tracker options.
func (s Settings) TrackingOptions() tracking.Options {
	return tracking.Options{
		Weights: s.Tracking.Weights,
		Thresholds: tracking.Thresholds{
			Known:        s.Tracking.KnownThreshold,
			KnownCognate: s.Tracking.KnownThresholdCognate,
		},
		KnownLanguages: slices.Clone(s.Tracking.KnownLanguages),
		DataLifetime:   s.Tracking.DataLifetime,
		MaxCount:       s.Tracking.MaxCount,
		AnkiEnabled:    s.EnableAnki,
	}
}

// Queries returns the refresher queries.
func (s Settings) Queries() tracking.Queries {
	return tracking.Queries{
		Mature:        s.Tracking.QueryMature,
		Young:         s.Tracking.QueryYoung,
		WordField:     s.Fields.Word,
		SentenceField: s.Fields.Sentence,
	}
}

// NoteContent is what a new note says, by role.
type NoteContent struct {
	Sentence      string
	Word          string
	Frequency     string
	Definition1   string
	Definition2   string
	Pronunciation string
	Image         string
}

// NoteValues maps the enabled note fields to their values. Empty values
// are skipped.
func (f NoteFields) NoteValues(c NoteContent) map[string]string {
	out := make(map[string]string)
	set := func(field, value string) {
		if field == "" || field == Disabled || value == "" {
			return
		}
		out[field] = value
	}
	set(f.Sentence, c.Sentence)
	set(f.Word, c.Word)
	set(f.Frequency, c.Frequency)
	set(f.Definition1, c.Definition1)
	set(f.Definition2, c.Definition2)
	set(f.Pronunciation, c.Pronunciation)
	set(f.Image, c.Image)
	return out
}

func secret(env, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}

// loader reads typed values from viper, falling back to the registered
// default and recording a ConfigError when a value is unusable.
type loader struct {
	v    *viper.Viper
	errs []error
}

func (l *loader) invalid(key string, value interface{}, reason string) {
	def, _ := Default(key)
	l.errs = append(l.errs, &domain.ConfigError{Key: key, Value: value, Default: def, Reason: reason})
}

func (l *loader) def(key string) interface{} {
	d, _ := Default(key)
	return d
}

func (l *loader) bool(key string) bool {
	raw := l.v.Get(key)
	b, err := cast.ToBoolE(raw)
	if err != nil {
		l.invalid(key, raw, "not a boolean")
		return cast.ToBool(l.def(key))
	}
	return b
}

func (l *loader) str(key string, required bool) string {
	raw := l.v.Get(key)
	s, err := cast.ToStringE(raw)
	if err != nil {
		l.invalid(key, raw, "not a string")
		return cast.ToString(l.def(key))
	}
	s = strings.TrimSpace(s)
	if required && s == "" {
		l.invalid(key, raw, "must not be empty")
		return cast.ToString(l.def(key))
	}
	return s
}

func (l *loader) intRange(key string, lo, hi int) int {
	raw := l.v.Get(key)
	n, err := cast.ToIntE(raw)
	if err != nil {
		l.invalid(key, raw, "not an integer")
		return cast.ToInt(l.def(key))
	}
	if n < lo || n > hi {
		l.invalid(key, raw, fmt.Sprintf("must be between %d and %d", lo, hi))
		return cast.ToInt(l.def(key))
	}
	return n
}

func (l *loader) floatRange(key string, lo, hi float64) float64 {
	raw := l.v.Get(key)
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		l.invalid(key, raw, "not a number")
		return cast.ToFloat64(l.def(key))
	}
	if f < lo || f > hi {
		l.invalid(key, raw, fmt.Sprintf("must be between %g and %g", lo, hi))
		return cast.ToFloat64(l.def(key))
	}
	return f
}

// duration accepts Go duration strings; bare numbers are seconds.
func (l *loader) duration(key string, lo, hi time.Duration) time.Duration {
	raw := l.v.Get(key)
	d, err := toDuration(raw)
	if err != nil {
		l.invalid(key, raw, "not a duration")
		d, _ = toDuration(l.def(key))
		return d
	}
	if d < lo || d > hi {
		l.invalid(key, raw, fmt.Sprintf("must be between %s and %s", lo, hi))
		d, _ = toDuration(l.def(key))
	}
	return d
}

func toDuration(raw interface{}) (time.Duration, error) {
	switch v := raw.(type) {
	case int, int32, int64, float32, float64:
		secs, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, err
		}
		return time.Duration(secs * float64(time.Second)), nil
	case string:
		if secs, err := cast.ToFloat64E(v); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		return time.ParseDuration(strings.TrimSpace(v))
	default:
		return cast.ToDurationE(raw)
	}
}

func (l *loader) oneOf(key string, allowed ...string) string {
	raw := l.v.Get(key)
	s := strings.ToLower(strings.TrimSpace(cast.ToString(raw)))
	if !slices.Contains(allowed, s) {
		l.invalid(key, raw, "must be one of "+strings.Join(allowed, ", "))
		return cast.ToString(l.def(key))
	}
	return s
}

func (l *loader) url(key string) string {
	raw := l.v.Get(key)
	s := strings.TrimSpace(cast.ToString(raw))
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		l.invalid(key, raw, "must be an http(s) URL")
		return cast.ToString(l.def(key))
	}
	return s
}

// languages accepts a comma-separated string or a YAML list.
func (l *loader) languages(key string) []string {
	raw := l.v.Get(key)
	var parts []string
	switch v := raw.(type) {
	case string:
		parts = strings.Split(v, ",")
	case nil:
	default:
		list, err := cast.ToStringSliceE(v)
		if err != nil {
			l.invalid(key, raw, "not a list of language codes")
			return domain.NormalizeLanguages(strings.Split(cast.ToString(l.def(key)), ","))
		}
		parts = list
	}
	return domain.NormalizeLanguages(parts)
}

// path resolves an optional directory, defaulting to base/sub.
func (l *loader) path(key, base, sub string) string {
	if p := l.str(key, false); p != "" {
		return p
	}
	return filepath.Join(base, sub)
}
