// Package archive moves a profile's data directory aside on a full reset.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNoData means the data directory does not exist.
var ErrNoData = errors.New("data directory does not exist")

// ArchiveDataDir moves dataDir to <parent>/archive/<name>-<timestamp> and
// returns the archive path. The caller must close files inside dataDir
// first.
func ArchiveDataDir(dataDir string, now time.Time) (string, error) {
	info, err := os.Stat(dataDir)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNoData, dataDir)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat data directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dataDir)
	}

	dataDir = filepath.Clean(dataDir)
	archiveDir := filepath.Join(filepath.Dir(dataDir), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	base := filepath.Base(dataDir)
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s", base, now.Format("20060102-150405")))
	if _, err := os.Stat(archivePath); err == nil {
		// Add microseconds to make it unique
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s", base, now.Format("20060102-150405.000000")))
	}

	if err := os.Rename(dataDir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive data directory: %w", err)
	}
	return archivePath, nil
}
