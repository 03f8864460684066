// Package cas implements the durable, fingerprint-addressed result store.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultPath is where the result store lives relative to the project root.
const DefaultPath = ".mason/cache.json"

var _ ports.ResultStore = (*Store)(nil)

// Store implements ports.ResultStore using a flat JSON file keyed by
// fingerprint. Only successful results are persisted: a failure recorded by
// one run is never served from the cache by a later run, so fixing the
// environment without touching inputs still retries the rule.
type Store struct {
	path  string
	mu    sync.RWMutex
	cache map[string]domain.BuildResult
}

// NewStore creates a result store backed by the file at the given path.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path:  filepath.Clean(path),
		cache: make(map[string]domain.BuildResult),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, "failed to read result store")
	}
	if len(data) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, &s.cache); err != nil {
		return zerr.Wrap(err, "failed to unmarshal result store")
	}
	return nil
}

func (s *Store) save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.cache, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return zerr.Wrap(err, "failed to marshal result store")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create directory for result store")
	}

	//nolint:gosec // Path is cleaned and provided by trusted caller
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return zerr.Wrap(err, "failed to write result store")
	}
	return nil
}

// Lookup retrieves the result recorded for a fingerprint.
func (s *Store) Lookup(fp domain.Fingerprint) (*domain.BuildResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.cache[fp.String()]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

// Record stores the result for a fingerprint. Non-built results are
// accepted and dropped.
func (s *Store) Record(fp domain.Fingerprint, res domain.BuildResult) error {
	if res.Status != domain.StatusBuilt {
		return nil
	}

	s.mu.Lock()
	s.cache[fp.String()] = res
	s.mu.Unlock()

	return s.save()
}
