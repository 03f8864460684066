// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/mason/internal/core/domain"
)

// StepRunner executes the build steps a rule produced, in order, stopping at
// the first failure. It is the engine's only gateway to external work.
//
//go:generate go run go.uber.org/mock/mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks
type StepRunner interface {
	// RunSteps executes steps sequentially for the given target. It returns
	// an error naming the failed step as soon as a step reports non-success;
	// remaining steps are not executed.
	RunSteps(ctx context.Context, ec *domain.ExecutionContext, target domain.BuildTarget, steps []domain.BuildStep) error
}
