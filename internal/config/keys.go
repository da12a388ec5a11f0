// Package config holds the typed settings schema of wordsieve and the
// viper-backed store that persists it.
package config

import (
	"os"
	"path/filepath"
	"sort"
)

// Setting keys as they appear in the YAML config file.
const (
	KeyEnableAnki         = "enable_anki"
	KeyAnkiAPI            = "anki_api"
	KeyAnkiTimeout        = "anki.timeout"
	KeyDeckName           = "deck_name"
	KeyTags               = "tags"
	KeyNoteType           = "note_type"
	KeySentenceField      = "sentence_field"
	KeyWordField          = "word_field"
	KeyFrequencyField     = "frequency_field"
	KeyDefinition1Field   = "definition1_field"
	KeyDefinition2Field   = "definition2_field"
	KeyPronunciationField = "pronunciation_field"
	KeyImageField         = "image_field"
	KeyTargetLanguage     = "target_language"

	KeyQueryMature           = "tracking.anki_query_mature"
	KeyQueryYoung            = "tracking.anki_query_young"
	KeyKnownThreshold        = "tracking.known_threshold"
	KeyKnownThresholdCognate = "tracking.known_threshold_cognate"
	KeyKnownLangs            = "tracking.known_langs"
	KeyWSeen                 = "tracking.w_seen"
	KeyWLookup               = "tracking.w_lookup"
	KeyWAnkiWord             = "tracking.w_anki_word"
	KeyWAnkiCtx              = "tracking.w_anki_ctx"
	KeyWAnkiWordYoung        = "tracking.w_anki_word_y"
	KeyWAnkiCtxYoung         = "tracking.w_anki_ctx_y"
	KeyDataLifetime          = "tracking.known_data_lifetime"
	KeyMaxCount              = "tracking.max_count"
	KeySaturateExposure      = "tracking.saturate_exposure"

	KeyCognateJudge       = "cognate.judge"
	KeyLexiconDir         = "cognate.lexicon_dir"
	KeyMinSimilarity      = "cognate.min_similarity"
	KeyCognateOpenAIModel = "cognate.openai_model"
	KeyCognateGeminiModel = "cognate.gemini_model"
	KeyOpenAIKey          = "cognate.openai_key"
	KeyGeminiKey          = "cognate.gemini_key"

	KeyAudioCacheDir    = "audio.cache_dir"
	KeyAudioTTS         = "audio.tts"
	KeyAudioOpenAIModel = "audio.openai_model"
	KeyAudioOpenAIVoice = "audio.openai_voice"

	KeyDataDir   = "data.dir"
	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
	KeyConfigVer = "config_ver"
)

// Disabled marks a note field that is not exported.
const Disabled = "<disabled>"

// CurrentConfigVersion is written by Migrate.
const CurrentConfigVersion = 1

// Cognate judge names.
const (
	JudgeNone    = "none"
	JudgeLexicon = "lexicon"
	JudgeOpenAI  = "openai"
	JudgeGemini  = "gemini"
)

// defaults maps every known key to its default value. Paths derived from
// data.dir default to "" and are resolved by Load.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		KeyEnableAnki:         true,
		KeyAnkiAPI:            "http://127.0.0.1:8765",
		KeyAnkiTimeout:        "5s",
		KeyDeckName:           "Default",
		KeyTags:               "vocabsieve",
		KeyNoteType:           "vocabsieve-notes",
		KeySentenceField:      "Sentence",
		KeyWordField:          "Word",
		KeyFrequencyField:     Disabled,
		KeyDefinition1Field:   "Definition",
		KeyDefinition2Field:   Disabled,
		KeyPronunciationField: Disabled,
		KeyImageField:         Disabled,
		KeyTargetLanguage:     "en",

		KeyQueryMature:           "prop:ivl>=14",
		KeyQueryYoung:            "prop:ivl<14 is:review",
		KeyKnownThreshold:        100,
		KeyKnownThresholdCognate: 25,
		KeyKnownLangs:            "en",
		KeyWSeen:                 8,
		KeyWLookup:               15,
		KeyWAnkiWord:             70,
		KeyWAnkiCtx:              30,
		KeyWAnkiWordYoung:        40,
		KeyWAnkiCtxYoung:         20,
		KeyDataLifetime:          1800,
		KeyMaxCount:              1000,
		KeySaturateExposure:      true,

		KeyCognateJudge:       JudgeNone,
		KeyLexiconDir:         "",
		KeyMinSimilarity:      0.8,
		KeyCognateOpenAIModel: "gpt-4o-mini",
		KeyCognateGeminiModel: "gemini-2.0-flash",
		KeyOpenAIKey:          "",
		KeyGeminiKey:          "",

		KeyAudioCacheDir:    "",
		KeyAudioTTS:         false,
		KeyAudioOpenAIModel: "gpt-4o-mini-tts",
		KeyAudioOpenAIVoice: "alloy",

		KeyDataDir:   DefaultDataDir(),
		KeyLogLevel:  "info",
		KeyLogFormat: "console",
		KeyConfigVer: CurrentConfigVersion,
	}
}

// Keys returns every known setting key, sorted.
func Keys() []string {
	d := defaults()
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Default returns the default of key and whether key is known.
func Default(key string) (interface{}, bool) {
	v, ok := defaults()[key]
	return v, ok
}

// IsSecret reports whether key holds a credential that should not be
// printed.
func IsSecret(key string) bool {
	return key == KeyOpenAIKey || key == KeyGeminiKey
}

// DefaultDataDir returns ~/.local/state/wordsieve, or a relative directory
// when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wordsieve"
	}
	return filepath.Join(home, ".local", "state", "wordsieve")
}
