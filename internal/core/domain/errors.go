package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidTarget is returned when a target name does not follow the
	// //path/to/pkg:name syntax.
	ErrInvalidTarget = zerr.New("invalid build target")

	// ErrDuplicateTarget is returned when two rules claim the same target.
	ErrDuplicateTarget = zerr.New("duplicate build target")

	// ErrUnresolvedDependency is returned when a rule references a target
	// that has not been constructed and indexed yet.
	ErrUnresolvedDependency = zerr.New("unresolved dependency")

	// ErrCycleDetected is returned when the dependency graph contains a cycle.
	ErrCycleDetected = zerr.New("dependency cycle detected")

	// ErrTargetNotFound is returned when a requested target is not part of
	// the dependency graph.
	ErrTargetNotFound = zerr.New("target not found")

	// ErrNoTargetsSpecified is returned when a build is requested without
	// any targets.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrStepFailed is returned when an executed build step reports failure.
	ErrStepFailed = zerr.New("build step failed")

	// ErrBuildFailed is returned when at least one requested target did not
	// reach a built or cached terminal state.
	ErrBuildFailed = zerr.New("build failed")
)
