package rules

import (
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

var _ OutputRule = (*ManifestRule)(nil)

// ManifestRule merges a skeleton file with the manifest outputs contributed
// by every transitive manifest dependency, producing one merged manifest.
type ManifestRule struct {
	baseRule
	skeleton string
	output   string
}

// InputsToCompareToOutput returns the skeleton content descriptor and the
// output path. The fragment files of transitive manifest dependencies are
// not declared here: they are outputs of those rules and already captured by
// their fingerprints.
func (r *ManifestRule) InputsToCompareToOutput(bctx *domain.BuildContext) ([]string, error) {
	d, err := bctx.Hasher.HashInput(bctx.RootDir, r.skeleton)
	if err != nil {
		return nil, err
	}
	return []string{d, "out:" + r.output}, nil
}

// BuildInternal collects the merged-manifest fragments from every transitive
// manifest dependency, in dependency order, and produces one merge step.
func (r *ManifestRule) BuildInternal(bctx *domain.BuildContext) ([]domain.BuildStep, error) {
	closure, err := bctx.Graph.TransitiveDependenciesOf(r.target)
	if err != nil {
		return nil, err
	}

	var fragments []string
	for _, dep := range closure {
		if dep.Type() != domain.RuleTypeManifest {
			continue
		}
		if out, ok := dep.(OutputRule); ok {
			fragments = append(fragments, out.OutputPath())
		}
	}

	return []domain.BuildStep{
		&generateManifestStep{
			skeleton:  r.skeleton,
			fragments: fragments,
			output:    r.output,
		},
	}, nil
}

// OutputPath returns the merged manifest path.
func (r *ManifestRule) OutputPath() string {
	return r.output
}

// generateManifestStep concatenates the skeleton and the fragment files into
// the output manifest.
type generateManifestStep struct {
	skeleton  string
	fragments []string
	output    string
}

func (s *generateManifestStep) Description() string {
	return "generate_manifest " + s.output
}

func (s *generateManifestStep) Execute(_ context.Context, ec *domain.ExecutionContext) error {
	merged, err := os.ReadFile(filepath.Join(ec.RootDir, s.skeleton)) //nolint:gosec // rule-declared path
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read manifest skeleton"), "path", s.skeleton)
	}

	for _, fragment := range s.fragments {
		data, err := os.ReadFile(filepath.Join(ec.RootDir, fragment)) //nolint:gosec // rule-declared path
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to read manifest fragment"), "path", fragment)
		}
		if len(merged) > 0 && merged[len(merged)-1] != '\n' {
			merged = append(merged, '\n')
		}
		merged = append(merged, data...)
	}

	outPath := filepath.Join(ec.RootDir, s.output)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create manifest output directory")
	}
	if err := os.WriteFile(outPath, merged, 0o644); err != nil { //nolint:gosec // build artifact
		return zerr.With(zerr.Wrap(err, "failed to write manifest"), "path", s.output)
	}
	return nil
}

// ManifestRuleBuilder stages a ManifestRule.
type ManifestRuleBuilder struct {
	common
	skeleton string
	output   string
}

// NewManifestRule returns an empty builder.
func NewManifestRule() *ManifestRuleBuilder {
	return &ManifestRuleBuilder{}
}

// SetTarget sets the rule's build target.
func (b *ManifestRuleBuilder) SetTarget(t domain.BuildTarget) *ManifestRuleBuilder {
	b.setTarget(t)
	return b
}

// AddDependency declares a dependency target.
func (b *ManifestRuleBuilder) AddDependency(t domain.BuildTarget) *ManifestRuleBuilder {
	b.addDependency(t)
	return b
}

// SetSkeleton sets the skeleton file path.
func (b *ManifestRuleBuilder) SetSkeleton(path string) *ManifestRuleBuilder {
	b.skeleton = path
	return b
}

// SetOutput sets the merged manifest output path.
func (b *ManifestRuleBuilder) SetOutput(path string) *ManifestRuleBuilder {
	b.output = path
	return b
}

// Build resolves the declared dependencies against index and produces the
// immutable rule.
func (b *ManifestRuleBuilder) Build(index Index) (*ManifestRule, error) {
	target, deps, err := b.resolve(index)
	if err != nil {
		return nil, err
	}
	if b.skeleton == "" || b.output == "" {
		return nil, zerr.With(zerr.New("manifest rule requires skeleton and output"), "target", target.String())
	}
	return &ManifestRule{
		baseRule: baseRule{
			target:   target,
			ruleType: domain.RuleTypeManifest,
			deps:     deps,
		},
		skeleton: b.skeleton,
		output:   b.output,
	}, nil
}
