package shell

import (
	"context"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.StepRunner = (*Runner)(nil)

// Runner executes a rule's build steps in order, stopping at the first
// failure. Retries and timeouts are policies for the caller to layer on
// top; the runner treats any step error as a rule failure.
type Runner struct {
	logger ports.Logger
}

// NewRunner creates a step runner.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{logger: logger}
}

// RunSteps implements ports.StepRunner.
func (r *Runner) RunSteps(ctx context.Context, ec *domain.ExecutionContext, target domain.BuildTarget, steps []domain.BuildStep) error {
	for _, step := range steps {
		if ec.Verbose {
			r.logger.Info(target.String() + ": " + step.Description())
		}
		if err := step.Execute(ctx, ec); err != nil {
			return zerr.With(
				zerr.With(zerr.Wrap(err, "build step failed"), "target", target.String()),
				"step", step.Description())
		}
	}
	return nil
}
