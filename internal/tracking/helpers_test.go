package tracking

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeNotes answers FindNotes by the base query a search starts with.
type fakeNotes struct {
	mu        sync.Mutex
	queries   []string
	results   map[string][]int64
	fields    map[int64]map[string]string
	findErr   error
	fieldsErr error
}

func (f *fakeNotes) FindNotes(_ context.Context, query string) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.findErr != nil {
		return nil, f.findErr
	}
	for base, ids := range f.results {
		if strings.HasPrefix(query, "("+base+")") {
			return ids, nil
		}
	}
	return nil, nil
}

func (f *fakeNotes) NoteFields(_ context.Context, ids []int64, fields ...string) (map[int64]map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fieldsErr != nil {
		return nil, f.fieldsErr
	}
	out := make(map[int64]map[string]string, len(ids))
	for _, id := range ids {
		values := make(map[string]string, len(fields))
		for _, name := range fields {
			values[name] = f.fields[id][name]
		}
		out[id] = values
	}
	return out, nil
}

func (f *fakeNotes) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("bad time %q: %v", s, err)
	}
	return ts
}
