// Package rules contains the concrete build-rule variants and their
// builders. Every variant shares the same caching contract; they differ only
// in what they declare as inputs and which steps they generate.
package rules

import (
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

// Index maps already-constructed rules by target. Builders resolve their
// declared dependencies against it, which forces rules to be constructed in
// an order consistent with the dependency graph.
type Index map[domain.BuildTarget]domain.BuildRule

// common is the mutable staging state shared by every rule builder.
type common struct {
	target domain.BuildTarget
	deps   []domain.BuildTarget
}

func (c *common) setTarget(t domain.BuildTarget) {
	c.target = t
}

func (c *common) addDependency(t domain.BuildTarget) {
	c.deps = append(c.deps, t)
}

// resolve looks up each declared dependency in the index. It fails with
// ErrUnresolvedDependency when a dependency has not been constructed yet.
// The returned slice is owned by the rule; further builder mutation has no
// effect on it.
func (c *common) resolve(index Index) (domain.BuildTarget, []domain.BuildRule, error) {
	if c.target.IsZero() {
		return domain.BuildTarget{}, nil, zerr.Wrap(domain.ErrInvalidTarget, "builder has no target")
	}

	resolved := make([]domain.BuildRule, 0, len(c.deps))
	for _, dep := range c.deps {
		rule, ok := index[dep]
		if !ok {
			return domain.BuildTarget{}, nil, zerr.With(
				zerr.With(domain.ErrUnresolvedDependency, "target", c.target.String()),
				"dependency", dep.String())
		}
		resolved = append(resolved, rule)
	}
	return c.target, resolved, nil
}

// baseRule carries the identity every variant shares.
type baseRule struct {
	target   domain.BuildTarget
	ruleType domain.RuleType
	deps     []domain.BuildRule
}

func (r *baseRule) Target() domain.BuildTarget {
	return r.target
}

func (r *baseRule) Type() domain.RuleType {
	return r.ruleType
}

func (r *baseRule) Dependencies() []domain.BuildRule {
	return r.deps
}

// OutputRule is satisfied by rules that materialize a single output path,
// letting dependents aggregate artifacts without knowing rule internals.
type OutputRule interface {
	domain.BuildRule
	OutputPath() string
}
