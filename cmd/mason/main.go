// Package main is the entry point for the mason build tool.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/mason/cmd/mason/commands"
	"go.trai.ch/mason/internal/app"
	"go.trai.ch/mason/internal/core/domain"
	_ "go.trai.ch/mason/internal/wiring"
)

// Exit codes: 0 success, 1 build failure, 2 planning error.
const (
	exitOK       = 0
	exitBuild    = 1
	exitPlanning = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available if initialization failed.
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return exitBuild
	}

	cli := commands.New(components.App)

	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, domain.ErrBuildFailed) {
			// Per-rule failures were already reported by the engine.
			return exitBuild
		}
		components.Logger.Error(err)
		if isPlanningError(err) {
			return exitPlanning
		}
		return exitBuild
	}
	return exitOK
}

// isPlanningError reports whether the error was raised before any rule was
// scheduled.
func isPlanningError(err error) bool {
	return errors.Is(err, domain.ErrInvalidTarget) ||
		errors.Is(err, domain.ErrDuplicateTarget) ||
		errors.Is(err, domain.ErrUnresolvedDependency) ||
		errors.Is(err, domain.ErrCycleDetected) ||
		errors.Is(err, domain.ErrTargetNotFound) ||
		errors.Is(err, domain.ErrNoTargetsSpecified)
}
