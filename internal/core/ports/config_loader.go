package ports

import "go.trai.ch/mason/internal/core/domain"

// ConfigLoader loads a project configuration file and turns it into a
// validated dependency graph.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration file at the given path.
	Load(path string) (*domain.DependencyGraph, error)
}
