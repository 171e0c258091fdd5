package history

import (
	"context"
	"sync"
)

// maxMemoryEntries bounds the in-memory store so a long-running server
// does not grow without limit.
const maxMemoryEntries = 1000

// MemoryStore keeps history in process memory. This is the default when
// no MongoDB is configured; entries are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry // newest first
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add records an entry, evicting the oldest when full.
func (s *MemoryStore) Add(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append([]Entry{e}, s.entries...)
	if len(s.entries) > maxMemoryEntries {
		s.entries = s.entries[:maxMemoryEntries]
	}
	return nil
}

// List returns the most recent entries, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit > len(s.entries) {
		limit = len(s.entries)
	}
	out := make([]Entry, limit)
	copy(out, s.entries[:limit])
	return out, nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
