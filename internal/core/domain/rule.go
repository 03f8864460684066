// Package domain contains the core model of the build-rule engine: targets,
// rules, the dependency graph, fingerprints and build results.
package domain

import (
	"context"
	"io"
)

// RuleType is a closed tag distinguishing rule variants. It participates in
// fingerprint computation, so two rules with identical inputs but different
// kinds never share a cache entry.
type RuleType string

const (
	// RuleTypeCommand runs a user-supplied command over declared input files.
	RuleTypeCommand RuleType = "command"
	// RuleTypeManifest merges a skeleton file with the manifest fragments
	// contributed by transitive manifest dependencies.
	RuleTypeManifest RuleType = "manifest"
	// RuleTypePackage archives resource directories and dependency outputs
	// into a single artifact.
	RuleTypePackage RuleType = "package"
)

// BuildRule is one node in the dependency graph, capable of producing the
// build steps for its target. Implementations are immutable after
// construction and are created exclusively through their builder.
type BuildRule interface {
	// Target returns the rule's unique build target.
	Target() BuildTarget

	// Type returns the rule's variant tag.
	Type() RuleType

	// Dependencies returns the rules this rule depends on, in declared
	// order, resolved to shared read-only references.
	Dependencies() []BuildRule

	// InputsToCompareToOutput returns the ordered opaque descriptors of the
	// rule's own inputs (file contents, configuration). It must be a pure
	// function of the rule's configuration and the current environment.
	//
	// Correctness precondition on implementers: the result must not include
	// anything already captured by a dependency's fingerprint, and must not
	// omit anything that affects the rule's output. Violating either breaks
	// the caching contract.
	InputsToCompareToOutput(bctx *BuildContext) ([]string, error)

	// BuildInternal produces the ordered build steps that materialize the
	// rule's output. It may perform I/O to assemble step parameters; I/O
	// failures are propagated, not swallowed.
	BuildInternal(bctx *BuildContext) ([]BuildStep, error)
}

// BuildStep is one unit of external work produced by a rule, typically a
// toolchain invocation. Steps are executed in the order the rule returned
// them; any error marks the rule as failed.
type BuildStep interface {
	// Description is a short human-readable summary of the step.
	Description() string

	// Execute performs the step's work.
	Execute(ctx context.Context, ec *ExecutionContext) error
}

// InputHasher maps a declared input path to a content-addressed descriptor,
// so that editing a file changes the owning rule's fingerprint.
type InputHasher interface {
	HashInput(root, path string) (string, error)
}

// BuildContext threads build-wide facts through rule evaluation. The engine
// constructs one per run; rules treat it as read-only.
type BuildContext struct {
	// Graph is the immutable dependency graph of the current run.
	Graph *DependencyGraph

	// Hasher turns declared input paths into content descriptors.
	Hasher InputHasher

	// RootDir is the project root all declared paths are relative to.
	RootDir string
}

// ExecutionContext carries environment facts needed to execute build steps:
// toolchain locations, verbosity and output streams. It is supplied by the
// caller per build; the engine only threads it through.
type ExecutionContext struct {
	// RootDir is the working directory for step execution.
	RootDir string

	// Verbose selects chatty toolchain invocations where available.
	Verbose bool

	// Toolchain maps a tool name to the executable to invoke instead.
	Toolchain map[string]string

	// Env holds extra environment entries in KEY=VALUE form.
	Env []string

	// Stdout and Stderr receive step output. Nil writers fall back to the
	// process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Tool resolves the executable for a named tool, falling back to the name
// itself so PATH lookup applies.
func (ec *ExecutionContext) Tool(name string) string {
	if ec.Toolchain != nil {
		if path, ok := ec.Toolchain[name]; ok && path != "" {
			return path
		}
	}
	return name
}
