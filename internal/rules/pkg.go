package rules

import (
	"slices"

	"go.trai.ch/mason/internal/adapters/shell"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

var _ OutputRule = (*PackageRule)(nil)

// PackageRule archives its declared resource directories and the outputs of
// its direct dependencies into a single artifact.
type PackageRule struct {
	baseRule
	resourceDirs []string
	output       string
}

// InputsToCompareToOutput returns content descriptors for the resource
// directories plus the output path. Dependency outputs are covered by the
// dependency fingerprints and are not declared again.
func (r *PackageRule) InputsToCompareToOutput(bctx *domain.BuildContext) ([]string, error) {
	descriptors, err := hashInputs(bctx, r.resourceDirs)
	if err != nil {
		return nil, err
	}
	return append(descriptors, "out:"+r.output), nil
}

// BuildInternal produces one tar invocation over the resource directories
// and every direct dependency's output, in declared order.
func (r *PackageRule) BuildInternal(*domain.BuildContext) ([]domain.BuildStep, error) {
	args := []string{"-c", "-f", r.output}
	args = append(args, r.resourceDirs...)
	for _, dep := range r.deps {
		if out, ok := dep.(OutputRule); ok {
			args = append(args, out.OutputPath())
		}
	}

	return []domain.BuildStep{
		&shell.Step{
			Tool:       "tar",
			Args:       args,
			VerboseArg: "-v",
		},
	}, nil
}

// OutputPath returns the archive path.
func (r *PackageRule) OutputPath() string {
	return r.output
}

// PackageRuleBuilder stages a PackageRule.
type PackageRuleBuilder struct {
	common
	resourceDirs []string
	output       string
}

// NewPackageRule returns an empty builder.
func NewPackageRule() *PackageRuleBuilder {
	return &PackageRuleBuilder{}
}

// SetTarget sets the rule's build target.
func (b *PackageRuleBuilder) SetTarget(t domain.BuildTarget) *PackageRuleBuilder {
	b.setTarget(t)
	return b
}

// AddDependency declares a dependency target.
func (b *PackageRuleBuilder) AddDependency(t domain.BuildTarget) *PackageRuleBuilder {
	b.addDependency(t)
	return b
}

// AddResourceDir declares a directory to include in the archive.
func (b *PackageRuleBuilder) AddResourceDir(path string) *PackageRuleBuilder {
	b.resourceDirs = append(b.resourceDirs, path)
	return b
}

// SetOutput sets the archive output path.
func (b *PackageRuleBuilder) SetOutput(path string) *PackageRuleBuilder {
	b.output = path
	return b
}

// Build resolves the declared dependencies against index and produces the
// immutable rule.
func (b *PackageRuleBuilder) Build(index Index) (*PackageRule, error) {
	target, deps, err := b.resolve(index)
	if err != nil {
		return nil, err
	}
	if b.output == "" {
		return nil, zerr.With(zerr.New("package rule requires an output"), "target", target.String())
	}
	return &PackageRule{
		baseRule: baseRule{
			target:   target,
			ruleType: domain.RuleTypePackage,
			deps:     deps,
		},
		resourceDirs: slices.Clone(b.resourceDirs),
		output:       b.output,
	}, nil
}
