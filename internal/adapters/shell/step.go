// Package shell provides the build step and step runner backed by os/exec.
package shell

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

var _ domain.BuildStep = (*Step)(nil)

// Step invokes one external command. The concrete argv is assembled at
// execution time from the ExecutionContext, so toolchain overrides and the
// verbosity flag of the current build apply.
type Step struct {
	// Tool is the logical tool name, resolved through the execution
	// context's toolchain table.
	Tool string
	// Args are the fixed arguments after the tool name.
	Args []string
	// VerboseArg is appended right after the tool name when the execution
	// context asks for chatty tools. Empty means the tool has no such flag.
	VerboseArg string
}

// Description returns the tool name and its arguments.
func (s *Step) Description() string {
	return s.Tool + " " + strings.Join(s.Args, " ")
}

// Execute runs the command with the context's environment, streaming output
// to the context's writers.
func (s *Step) Execute(ctx context.Context, ec *domain.ExecutionContext) error {
	argv := s.argv(ec)

	cmd := exec.CommandContext(ctx, ec.Tool(s.Tool), argv...) //nolint:gosec // rule-provided command
	cmd.Dir = ec.RootDir
	cmd.Env = append(os.Environ(), ec.Env...)

	cmd.Stdout = ec.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = ec.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		exitCode := -1 // Unknown or signal
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(
			zerr.With(zerr.Wrap(err, "command failed"), "command", s.Description()),
			"exit_code", exitCode)
	}
	return nil
}

func (s *Step) argv(ec *domain.ExecutionContext) []string {
	argv := make([]string, 0, len(s.Args)+1)
	if ec.Verbose && s.VerboseArg != "" {
		argv = append(argv, s.VerboseArg)
	}
	return append(argv, s.Args...)
}
