package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"codeberg.org/snonux/wordsieve/internal/domain"
)

// Store is the persistent key/value settings store.
type Store struct {
	v    *viper.Viper
	path string
	log  *zap.Logger
}

// NewStore wraps v, registering all defaults. path is where Save writes
// when v was not loaded from a file.
func NewStore(v *viper.Viper, path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	RegisterDefaults(v)
	return &Store{v: v, path: path, log: log}
}

// Path returns the file Save writes to.
func (s *Store) Path() string {
	if used := s.v.ConfigFileUsed(); used != "" {
		return used
	}
	return s.path
}

// Get returns the raw value of a known key.
func (s *Store) Get(key string) (interface{}, error) {
	if _, ok := Default(key); !ok {
		return nil, domain.NewValidationError(key, "unknown setting")
	}
	return s.v.Get(key), nil
}

// Set validates value for key and stores it. Invalid values are rejected
// with the ConfigError describing them.
func (s *Store) Set(key string, value interface{}) error {
	if _, ok := Default(key); !ok {
		return domain.NewValidationError(key, "unknown setting")
	}

	trial := viper.New()
	RegisterDefaults(trial)
	trial.Set(key, value)
	_, errs := Load(trial)
	for _, err := range errs {
		var cfgErr *domain.ConfigError
		if errors.As(err, &cfgErr) && cfgErr.Key == key {
			return err
		}
	}

	s.v.Set(key, value)
	return nil
}

// Clear resets every key to its default.
func (s *Store) Clear() {
	for key, value := range defaults() {
		s.v.Set(key, value)
	}
}

// Save writes all settings to the config file.
func (s *Store) Save() error {
	path := s.Path()
	if path == "" {
		return fmt.Errorf("no config file path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := s.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Migrate upgrades a legacy config and stamps the current config_ver.
// Configs from before versioning (they carry target_language but no
// config_ver) are reset to defaults; a fresh config only gets the stamp.
// It reports whether anything changed; the caller saves.
func (s *Store) Migrate() bool {
	if s.v.InConfig(KeyTargetLanguage) && !s.v.InConfig(KeyConfigVer) {
		s.log.Warn("resetting legacy settings", zap.String("file", s.v.ConfigFileUsed()))
		s.Clear()
		s.v.Set(KeyConfigVer, CurrentConfigVersion)
		return true
	}
	if !s.v.InConfig(KeyConfigVer) || cast.ToInt(s.v.Get(KeyConfigVer)) < CurrentConfigVersion {
		s.v.Set(KeyConfigVer, CurrentConfigVersion)
		return true
	}
	return false
}

// Settings loads the typed settings, logging every invalid value.
func (s *Store) Settings() Settings {
	settings, errs := Load(s.v)
	for _, err := range errs {
		s.log.Warn("invalid setting", zap.Error(err))
	}
	return settings
}
