// Package checkpoint provides OffsetStore implementations.
//
//   - MemoryStore: process-lifetime offsets (the default)
//   - BoltStore: offsets persisted in a bbolt file across restarts
package checkpoint

import "sync"

type MemoryStore struct {
	offsets map[string]int64
	mu      sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{offsets: make(map[string]int64)}
}

func (s *MemoryStore) Load(source string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offsets[source], nil
}

func (s *MemoryStore) Save(source string, offset int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offsets[source] = offset
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
