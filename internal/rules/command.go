package rules

import (
	"slices"
	"strings"

	"go.trai.ch/mason/internal/adapters/shell"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

var _ OutputRule = (*CommandRule)(nil)

// CommandRule runs a user-supplied command over its declared input files to
// produce one output. The generic escape hatch among the rule variants.
type CommandRule struct {
	baseRule
	inputs []string
	argv   []string
	output string
}

// InputsToCompareToOutput returns content descriptors for the declared input
// files plus the command line and output path, which are configuration the
// dependency fingerprints cannot capture.
func (r *CommandRule) InputsToCompareToOutput(bctx *domain.BuildContext) ([]string, error) {
	descriptors, err := hashInputs(bctx, r.inputs)
	if err != nil {
		return nil, err
	}
	descriptors = append(descriptors, "cmd:"+strings.Join(r.argv, "\x1f"))
	descriptors = append(descriptors, "out:"+r.output)
	return descriptors, nil
}

// BuildInternal produces a single shell step invoking the command.
func (r *CommandRule) BuildInternal(*domain.BuildContext) ([]domain.BuildStep, error) {
	return []domain.BuildStep{
		&shell.Step{
			Tool: r.argv[0],
			Args: r.argv[1:],
		},
	}, nil
}

// OutputPath returns the declared output path.
func (r *CommandRule) OutputPath() string {
	return r.output
}

// CommandRuleBuilder stages a CommandRule.
type CommandRuleBuilder struct {
	common
	inputs []string
	argv   []string
	output string
}

// NewCommandRule returns an empty builder.
func NewCommandRule() *CommandRuleBuilder {
	return &CommandRuleBuilder{}
}

// SetTarget sets the rule's build target.
func (b *CommandRuleBuilder) SetTarget(t domain.BuildTarget) *CommandRuleBuilder {
	b.setTarget(t)
	return b
}

// AddDependency declares a dependency target.
func (b *CommandRuleBuilder) AddDependency(t domain.BuildTarget) *CommandRuleBuilder {
	b.addDependency(t)
	return b
}

// AddInput declares an input file path relative to the project root.
func (b *CommandRuleBuilder) AddInput(path string) *CommandRuleBuilder {
	b.inputs = append(b.inputs, path)
	return b
}

// SetArgv sets the command to run.
func (b *CommandRuleBuilder) SetArgv(argv []string) *CommandRuleBuilder {
	b.argv = argv
	return b
}

// SetOutput sets the output path the command produces.
func (b *CommandRuleBuilder) SetOutput(path string) *CommandRuleBuilder {
	b.output = path
	return b
}

// Build resolves the declared dependencies against index and produces the
// immutable rule. Collection-typed configuration is copied, so mutating the
// builder afterwards has no effect on the produced rule.
func (b *CommandRuleBuilder) Build(index Index) (*CommandRule, error) {
	target, deps, err := b.resolve(index)
	if err != nil {
		return nil, err
	}
	if len(b.argv) == 0 {
		return nil, zerr.With(zerr.New("command rule requires a command"), "target", target.String())
	}
	return &CommandRule{
		baseRule: baseRule{
			target:   target,
			ruleType: domain.RuleTypeCommand,
			deps:     deps,
		},
		inputs: slices.Clone(b.inputs),
		argv:   slices.Clone(b.argv),
		output: b.output,
	}, nil
}
