package memory

import (
	"context"
	"sync"

	"promptkit/core"
)

// Store is a concurrent in-memory Storage implementation. Values live as
// long as the Store does.
type Store struct {
	mu   sync.RWMutex
	data map[string]uint64
}

func New() *Store { return &Store{data: map[string]uint64{}} }

func (s *Store) ReadInt(_ context.Context, key string) (uint64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) WriteInt(_ context.Context, key string, value uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Snapshot returns a copy of every stored value.
func (s *Store) Snapshot() map[string]uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]uint64, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// Close is a no-op so the store can be handed to a core as its closer.
func (s *Store) Close() error { return nil }

var _ core.Storage = (*Store)(nil)
