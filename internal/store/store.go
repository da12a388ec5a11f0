// Package store persists word records in SQLite.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/wordsieve/internal/tracking"
)

//go:embed migrations.sql
var migrationsSQL string

// FileName is the database file inside the data directory.
const FileName = "records.db"

// SQLiteStore implements tracking.Store on a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open opens (and migrates) the database at path, creating parent
// directories as needed.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers; usage is interactive.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// migrate runs the embedded migrations statement by statement.
func migrate(db *sql.DB) error {
	for _, stmt := range strings.Split(migrationsSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const selectColumns = `word, language, last_lookup, seen_count, lookup_count,
	anki_mature_word, anki_mature_ctx, anki_young_word, anki_young_ctx, anki_refreshed_at`

// Get returns the record for key.
func (s *SQLiteStore) Get(ctx context.Context, key tracking.Key) (tracking.WordRecord, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM word_records WHERE word = ? AND language = ?`,
		key.Word, key.Language)
	r, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return tracking.WordRecord{}, false, nil
	}
	if err != nil {
		return tracking.WordRecord{}, false, fmt.Errorf("select record: %w", err)
	}
	return r, true, nil
}

// Put inserts or replaces a record.
func (s *SQLiteStore) Put(ctx context.Context, r tracking.WordRecord) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO word_records (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(word, language) DO UPDATE SET
			last_lookup = excluded.last_lookup,
			seen_count = excluded.seen_count,
			lookup_count = excluded.lookup_count,
			anki_mature_word = excluded.anki_mature_word,
			anki_mature_ctx = excluded.anki_mature_ctx,
			anki_young_word = excluded.anki_young_word,
			anki_young_ctx = excluded.anki_young_ctx,
			anki_refreshed_at = excluded.anki_refreshed_at`,
		r.Word, r.Language, toUnix(r.LastLookup), r.SeenCount, r.LookupCount,
		r.AnkiMatureWordHits, r.AnkiMatureContextHits, r.AnkiYoungWordHits, r.AnkiYoungContextHits,
		toUnix(r.AnkiRefreshedAt))
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// List returns records ordered by language and word.
func (s *SQLiteStore) List(ctx context.Context, language string) ([]tracking.WordRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM word_records`
	var args []interface{}
	if language != "" {
		query += ` WHERE language = ?`
		args = append(args, language)
	}
	query += ` ORDER BY language, word`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []tracking.WordRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of stored records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM word_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Reset deletes every record.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM word_records`); err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(sc scanner) (tracking.WordRecord, error) {
	var r tracking.WordRecord
	var lastLookup, refreshedAt int64
	err := sc.Scan(&r.Word, &r.Language, &lastLookup, &r.SeenCount, &r.LookupCount,
		&r.AnkiMatureWordHits, &r.AnkiMatureContextHits, &r.AnkiYoungWordHits, &r.AnkiYoungContextHits,
		&refreshedAt)
	if err != nil {
		return tracking.WordRecord{}, err
	}
	r.LastLookup = fromUnix(lastLookup)
	r.AnkiRefreshedAt = fromUnix(refreshedAt)
	return r, nil
}

// Times are stored as Unix nanoseconds; 0 stands for the zero time.
func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
