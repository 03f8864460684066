package ports

import "go.trai.ch/mason/internal/core/domain"

// ResultStore maps fingerprints to build results. An in-memory map satisfies
// a single run; a durable implementation may be substituted without changing
// engine logic.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ResultStore interface {
	// Lookup retrieves the result recorded for a fingerprint.
	// Returns nil, nil if not found.
	Lookup(fp domain.Fingerprint) (*domain.BuildResult, error)

	// Record stores the result for a fingerprint.
	Record(fp domain.Fingerprint, res domain.BuildResult) error
}
