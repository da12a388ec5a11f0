package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/wordsieve/internal/domain"
)

func newFileStore(t *testing.T, content string) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".wordsieve.yaml")
	v := viper.New()
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())
	}
	return NewStore(v, path, nil)
}

func TestStore_GetSet(t *testing.T) {
	s := newFileStore(t, "")

	got, err := s.Get(KeyKnownThreshold)
	require.NoError(t, err)
	assert.Equal(t, 100, got)

	require.NoError(t, s.Set(KeyKnownThreshold, "120"))
	assert.Equal(t, 120, s.Settings().Tracking.KnownThreshold)

	_, err = s.Get("no.such.key")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, s.Set("no.such.key", 1), domain.ErrValidation)
}

func TestStore_SetRejectsInvalid(t *testing.T) {
	s := newFileStore(t, "")

	err := s.Set(KeyKnownThreshold, "2000")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Equal(t, 100, s.Settings().Tracking.KnownThreshold)

	assert.Error(t, s.Set(KeyAnkiAPI, "not a url"))
	assert.NoError(t, s.Set(KeyAnkiAPI, "https://anki.example:8765"))
}

func TestStore_SaveAndReload(t *testing.T) {
	s := newFileStore(t, "")
	require.NoError(t, s.Set(KeyDeckName, "Spanish"))
	require.NoError(t, s.Set(KeyKnownLangs, "en,de"))
	require.NoError(t, s.Save())

	v := viper.New()
	v.SetConfigFile(s.Path())
	require.NoError(t, v.ReadInConfig())
	reloaded := NewStore(v, s.Path(), nil).Settings()

	assert.Equal(t, "Spanish", reloaded.DeckName)
	assert.Equal(t, []string{"en", "de"}, reloaded.Tracking.KnownLanguages)
}

func TestStore_Clear(t *testing.T) {
	s := newFileStore(t, "deck_name: Spanish\ntracking:\n  w_seen: 3\n")
	require.Equal(t, "Spanish", s.Settings().DeckName)

	s.Clear()

	got := s.Settings()
	assert.Equal(t, "Default", got.DeckName)
	assert.Equal(t, 8, got.Tracking.Weights.Seen)
}

func TestStore_Migrate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		changed bool
		deck    string
	}{
		{"legacy config is reset", "target_language: es\ndeck_name: Spanish\n", true, "Default"},
		{"current config kept", "config_ver: 1\ntarget_language: es\ndeck_name: Spanish\n", false, "Spanish"},
		{"old version bumped", "config_ver: 0\ndeck_name: Spanish\n", true, "Spanish"},
		{"unversioned config stamped", "deck_name: Spanish\n", true, "Spanish"},
		{"no file stamped", "", true, "Default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFileStore(t, tt.content)

			assert.Equal(t, tt.changed, s.Migrate())
			got := s.Settings()
			assert.Equal(t, tt.deck, got.DeckName)
			assert.Equal(t, CurrentConfigVersion, got.ConfigVer)
		})
	}
}

func TestStore_MigrateFreshConfigOnce(t *testing.T) {
	s := newFileStore(t, "")
	require.True(t, s.Migrate())
	require.NoError(t, s.Save())

	v := viper.New()
	v.SetConfigFile(s.Path())
	require.NoError(t, v.ReadInConfig())
	assert.Equal(t, CurrentConfigVersion, v.GetInt(KeyConfigVer))
	assert.False(t, NewStore(v, s.Path(), nil).Migrate())
}

func TestStore_MigrateThenSave(t *testing.T) {
	s := newFileStore(t, "target_language: es\n")
	require.True(t, s.Migrate())
	require.NoError(t, s.Save())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "config_ver: 1"), "saved config: %s", data)
}
