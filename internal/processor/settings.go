package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"codeberg.org/snonux/wordsieve/internal/archive"
	"codeberg.org/snonux/wordsieve/internal/config"
)

// SettingsGet prints one setting. Secrets are masked.
func (p *Processor) SettingsGet(key string) error {
	value, err := p.config.Get(key)
	if err != nil {
		return err
	}
	p.printf("%s\n", display(key, value))
	return nil
}

// SettingsSet validates and saves one setting.
func (p *Processor) SettingsSet(key, value string) error {
	if err := p.config.Set(key, value); err != nil {
		return err
	}
	if err := p.config.Save(); err != nil {
		return err
	}
	p.printf("%s = %s (saved to %s)\n", key, display(key, value), p.config.Path())
	return nil
}

// SettingsReset restores and saves all defaults.
func (p *Processor) SettingsReset() error {
	p.config.Clear()
	if err := p.config.Save(); err != nil {
		return err
	}
	p.printf("Settings reset to defaults (saved to %s)\n", p.config.Path())
	return nil
}

// SettingsShow prints every setting, sorted by key.
func (p *Processor) SettingsShow() error {
	for _, key := range config.Keys() {
		value, err := p.config.Get(key)
		if err != nil {
			return err
		}
		p.printf("%s = %s\n", key, display(key, value))
	}
	return nil
}

func display(key string, value interface{}) string {
	var s string
	switch value.(type) {
	case []interface{}, []string:
		s = strings.Join(cast.ToStringSlice(value), ",")
	default:
		s = cast.ToString(value)
	}
	if config.IsSecret(key) && s != "" {
		return "********"
	}
	return s
}

// Reset deletes all word records. With --data the data directory is
// archived instead and the settings go back to their defaults.
func (p *Processor) Reset(ctx context.Context) error {
	if !p.flags.Data {
		if err := p.tracker.Reset(ctx); err != nil {
			return err
		}
		p.printf("All word records deleted\n")
		return nil
	}

	if err := p.Close(); err != nil {
		return fmt.Errorf("failed to close records: %w", err)
	}
	dataDir := p.settings.DataDir
	dst, err := archive.ArchiveDataDir(dataDir, p.now())
	if err != nil && !errors.Is(err, archive.ErrNoData) {
		return err
	}

	p.config.Clear()
	if err := p.config.Save(); err != nil {
		return err
	}
	p.settings = p.config.Settings()

	if dst == "" {
		p.printf("No data to archive in %s\n", dataDir)
	} else {
		p.printf("Data directory archived to %s\n", dst)
	}
	p.printf("Settings reset to defaults\n")
	return nil
}
