package tracking

import (
	"context"
	"sort"
	"sync"
)

// Store persists word records.
type Store interface {
	// Get returns the record for key and whether it exists.
	Get(ctx context.Context, key Key) (WordRecord, bool, error)
	// Put inserts or replaces a record.
	Put(ctx context.Context, r WordRecord) error
	// List returns all records of a language, or of every language when
	// language is empty.
	List(ctx context.Context, language string) ([]WordRecord, error)
	// Reset deletes every record.
	Reset(ctx context.Context) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[Key]WordRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[Key]WordRecord)}
}

func (m *MemoryStore) Get(_ context.Context, key Key) (WordRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[key]
	return r, ok, nil
}

func (m *MemoryStore) Put(_ context.Context, r WordRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.Key()] = r
	return nil
}

func (m *MemoryStore) List(_ context.Context, language string) ([]WordRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []WordRecord
	for _, r := range m.records {
		if language == "" || r.Language == language {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Language != out[j].Language {
			return out[i].Language < out[j].Language
		}
		return out[i].Word < out[j].Word
	})
	return out, nil
}

func (m *MemoryStore) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[Key]WordRecord)
	return nil
}
