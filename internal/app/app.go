// Package app implements the application layer for mason.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// RunOptions carry the per-invocation knobs from the CLI down to the engine.
type RunOptions struct {
	// ConfigFile is the path of the configuration file. Empty selects the
	// loader default.
	ConfigFile string
	// Jobs bounds parallel rule evaluation. Zero means one per CPU.
	Jobs int
	// Strict aborts scheduling on the first failure.
	Strict bool
	// Verbose enables chatty step execution. Debug logging is controlled
	// separately through MASON_DEBUG.
	Verbose bool
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	engine       *scheduler.Engine
	logger       ports.Logger
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, engine *scheduler.Engine, logger ports.Logger) *App {
	return &App{
		configLoader: loader,
		engine:       engine,
		logger:       logger,
	}
}

// Build executes the build process for the specified targets.
func (a *App) Build(ctx context.Context, targetNames []string, opts RunOptions) error {
	if len(targetNames) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	targets := make([]domain.BuildTarget, 0, len(targetNames))
	for _, name := range targetNames {
		target, err := domain.ParseBuildTarget(name)
		if err != nil {
			return err
		}
		targets = append(targets, target)
	}

	graph, err := a.configLoader.Load(opts.ConfigFile)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	ec := &domain.ExecutionContext{
		RootDir: ".",
		Verbose: opts.Verbose,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}

	report, err := a.engine.Run(ctx, graph, targets, ec, scheduler.Options{
		Jobs:   opts.Jobs,
		Strict: opts.Strict,
	})
	if err != nil {
		return err
	}

	a.summarize(report)
	if report.Failed() {
		return domain.ErrBuildFailed
	}
	return nil
}

// Targets returns every target declared in the configuration, in dependency
// order.
func (a *App) Targets(configFile string) ([]string, error) {
	graph, err := a.configLoader.Load(configFile)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	order := graph.TopologicalOrder()
	names := make([]string, 0, len(order))
	for _, target := range order {
		names = append(names, target.String())
	}
	return names, nil
}

func (a *App) summarize(report *scheduler.Report) {
	var built, cached, failed, skipped int
	for _, res := range report.Results {
		switch res.Status {
		case domain.StatusBuilt:
			built++
		case domain.StatusCached:
			cached++
		case domain.StatusFailed:
			failed++
		case domain.StatusSkipped:
			skipped++
		}
	}

	a.logger.Info(fmt.Sprintf("build finished: %d built, %d cached, %d failed, %d skipped in %s",
		built, cached, failed, skipped, report.Elapsed.Round(time.Millisecond)))
}
