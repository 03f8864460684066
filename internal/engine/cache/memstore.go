package cache

import (
	"sync"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
)

var _ ports.ResultStore = (*MemoryStore)(nil)

// MemoryStore is a process-local result store. It satisfies the store
// contract for a single run; a durable store can be substituted without
// changing engine logic.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[domain.Fingerprint]domain.BuildResult
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[domain.Fingerprint]domain.BuildResult),
	}
}

// Lookup retrieves the result recorded for a fingerprint.
func (s *MemoryStore) Lookup(fp domain.Fingerprint) (*domain.BuildResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.entries[fp]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

// Record stores the result for a fingerprint. Entries are written at most
// once per fingerprint; a later identical fingerprint keeps the first entry.
func (s *MemoryStore) Record(fp domain.Fingerprint, res domain.BuildResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[fp]; !exists {
		s.entries[fp] = res
	}
	return nil
}
