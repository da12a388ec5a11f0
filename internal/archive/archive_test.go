package archive

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestArchiveDataDir(t *testing.T) {
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "wordsieve")
	subDir := filepath.Join(dataDir, "forvo", "es")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("Failed to create data directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, "records.db"), []byte("db"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(subDir, "gato.mp3"), []byte("mp3"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	now := time.Date(2026, 3, 10, 14, 5, 9, 0, time.UTC)
	archived, err := ArchiveDataDir(dataDir, now)
	if err != nil {
		t.Fatalf("ArchiveDataDir failed: %v", err)
	}

	if _, err := os.Stat(dataDir); !os.IsNotExist(err) {
		t.Error("Data directory still exists after archiving")
	}
	want := filepath.Join(tmpDir, "archive", "wordsieve-20260310-140509")
	if archived != want {
		t.Errorf("archive path = %s, want %s", archived, want)
	}

	content, err := os.ReadFile(filepath.Join(archived, "forvo", "es", "gato.mp3"))
	if err != nil {
		t.Fatalf("Failed to read archived file: %v", err)
	}
	if string(content) != "mp3" {
		t.Errorf("Archived content = %q", content)
	}
}

func TestArchiveDataDir_SameSecond(t *testing.T) {
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "wordsieve")
	now := time.Date(2026, 3, 10, 14, 5, 9, 123456000, time.UTC)

	var paths []string
	for i := 0; i < 2; i++ {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			t.Fatalf("Failed to create data directory: %v", err)
		}
		p, err := ArchiveDataDir(dataDir, now)
		if err != nil {
			t.Fatalf("ArchiveDataDir failed: %v", err)
		}
		paths = append(paths, p)
	}

	if paths[0] == paths[1] {
		t.Fatalf("archives collided: %s", paths[0])
	}
	if !strings.HasSuffix(paths[1], ".123456") {
		t.Errorf("second archive should carry microseconds: %s", paths[1])
	}
}

func TestArchiveDataDir_Missing(t *testing.T) {
	_, err := ArchiveDataDir(filepath.Join(t.TempDir(), "missing"), time.Now())
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestArchiveDataDir_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ArchiveDataDir(file, time.Now()); err == nil {
		t.Error("expected error for a regular file")
	}
}
