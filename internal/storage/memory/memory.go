// Package memory keeps cache entries in process memory. It backs tests
// and deployments that want the lazy-populate semantics without disk.
package memory

import (
	"context"
	"sync"

	"github.com/goliatone/go-query-cache/pkg/interfaces/store"
)

// Store holds entries in a map guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ store.EntryStore = (*Store)(nil)

// New returns an empty in-memory entry store.
func New() *Store {
	return &Store{entries: make(map[string][]byte)}
}

func (s *Store) Read(ctx context.Context, name string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.entries[name]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (s *Store) Write(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.entries[name] = stored
	return nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, name)
	return nil
}

// Len reports the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
