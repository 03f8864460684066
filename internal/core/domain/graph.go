package domain

import (
	"strings"
	"sync"

	"go.trai.ch/zerr"
)

// DependencyGraph is the directed acyclic graph of build rules connected by
// declared dependency edges. It is constructed once per build, validated for
// acyclicity, and read-only afterwards; concurrent branches of the engine
// share it without synchronization. Only the transitive-dependency memo is
// mutable and guarded.
type DependencyGraph struct {
	rules      map[BuildTarget]BuildRule
	insertion  []BuildTarget
	topo       []BuildTarget
	dependents map[BuildTarget][]BuildTarget

	mu         sync.Mutex
	transitive map[BuildTarget][]BuildRule
}

// NewDependencyGraph builds the adjacency structure from the full set of
// already-resolved rules. It fails with ErrDuplicateTarget on a repeated
// target, ErrUnresolvedDependency when a rule depends on a rule outside the
// set, and ErrCycleDetected when the dependency closure of any rule includes
// itself.
func NewDependencyGraph(rules []BuildRule) (*DependencyGraph, error) {
	g := &DependencyGraph{
		rules:      make(map[BuildTarget]BuildRule, len(rules)),
		insertion:  make([]BuildTarget, 0, len(rules)),
		dependents: make(map[BuildTarget][]BuildTarget),
		transitive: make(map[BuildTarget][]BuildRule),
	}

	for _, rule := range rules {
		target := rule.Target()
		if _, exists := g.rules[target]; exists {
			return nil, zerr.With(ErrDuplicateTarget, "target", target.String())
		}
		g.rules[target] = rule
		g.insertion = append(g.insertion, target)
	}

	// Edges in insertion order so every dependents list is deterministic.
	for _, target := range g.insertion {
		for _, dep := range g.rules[target].Dependencies() {
			depTarget := dep.Target()
			if _, exists := g.rules[depTarget]; !exists {
				return nil, zerr.With(
					zerr.With(ErrUnresolvedDependency, "target", target.String()),
					"dependency", depTarget.String())
			}
			g.dependents[depTarget] = append(g.dependents[depTarget], target)
		}
	}

	if err := g.detectCycle(); err != nil {
		return nil, err
	}
	g.computeTopologicalOrder()

	return g, nil
}

const (
	colorUnvisited = iota
	colorVisiting
	colorVisited
)

// detectCycle runs a DFS over every rule and reports the offending cycle
// path when a back edge is found.
func (g *DependencyGraph) detectCycle() error {
	colors := make(map[BuildTarget]int, len(g.rules))
	var path []BuildTarget

	var visit func(t BuildTarget) error
	visit = func(t BuildTarget) error {
		colors[t] = colorVisiting
		path = append(path, t)

		for _, dep := range g.rules[t].Dependencies() {
			depTarget := dep.Target()
			switch colors[depTarget] {
			case colorVisiting:
				return cycleError(path, depTarget)
			case colorUnvisited:
				if err := visit(depTarget); err != nil {
					return err
				}
			}
		}

		colors[t] = colorVisited
		path = path[:len(path)-1]
		return nil
	}

	for _, t := range g.insertion {
		if colors[t] == colorUnvisited {
			if err := visit(t); err != nil {
				return err
			}
		}
	}
	return nil
}

// cycleError renders the closed walk from the first occurrence of dep on the
// current DFS path back to dep.
func cycleError(path []BuildTarget, dep BuildTarget) error {
	start := 0
	for i, t := range path {
		if t == dep {
			start = i
			break
		}
	}

	var b strings.Builder
	for _, t := range path[start:] {
		b.WriteString(t.String())
		b.WriteString(" -> ")
	}
	b.WriteString(dep.String())

	return zerr.With(ErrCycleDetected, "cycle", b.String())
}

// computeTopologicalOrder runs a Kahn-style in-degree reduction. Ties among
// rules with no remaining unmet dependency are broken by insertion order, so
// the order is reproducible across runs for a fixed rule set.
func (g *DependencyGraph) computeTopologicalOrder() {
	inDegree := make(map[BuildTarget]int, len(g.rules))
	for _, t := range g.insertion {
		inDegree[t] = len(g.rules[t].Dependencies())
	}

	ready := make([]BuildTarget, 0, len(g.rules))
	for _, t := range g.insertion {
		if inDegree[t] == 0 {
			ready = append(ready, t)
		}
	}

	g.topo = make([]BuildTarget, 0, len(g.rules))
	for len(ready) > 0 {
		t := ready[0]
		ready = ready[1:]
		g.topo = append(g.topo, t)

		for _, dependent := range g.dependents[t] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}
}

// Rule returns the rule owning the given target.
func (g *DependencyGraph) Rule(target BuildTarget) (BuildRule, bool) {
	rule, ok := g.rules[target]
	return rule, ok
}

// Size returns the number of rules in the graph.
func (g *DependencyGraph) Size() int {
	return len(g.rules)
}

// Targets returns all targets in insertion order.
func (g *DependencyGraph) Targets() []BuildTarget {
	out := make([]BuildTarget, len(g.insertion))
	copy(out, g.insertion)
	return out
}

// TopologicalOrder returns a sequence of targets in which every rule appears
// after all rules it depends on.
func (g *DependencyGraph) TopologicalOrder() []BuildTarget {
	out := make([]BuildTarget, len(g.topo))
	copy(out, g.topo)
	return out
}

// Dependents returns the targets that directly depend on the given target,
// in insertion order.
func (g *DependencyGraph) Dependents(target BuildTarget) []BuildTarget {
	return g.dependents[target]
}

// TransitiveDependenciesOf returns every rule reachable from target via
// dependency edges, dependencies before dependents, each rule once. The
// result excludes the rule itself. Computed lazily and memoized per target.
func (g *DependencyGraph) TransitiveDependenciesOf(target BuildTarget) ([]BuildRule, error) {
	if _, ok := g.rules[target]; !ok {
		return nil, zerr.With(ErrTargetNotFound, "target", target.String())
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.transitiveLocked(target), nil
}

func (g *DependencyGraph) transitiveLocked(target BuildTarget) []BuildRule {
	if memo, ok := g.transitive[target]; ok {
		return memo
	}

	seen := make(map[BuildTarget]bool)
	var closure []BuildRule

	var visit func(rule BuildRule)
	visit = func(rule BuildRule) {
		for _, dep := range rule.Dependencies() {
			if seen[dep.Target()] {
				continue
			}
			seen[dep.Target()] = true
			visit(dep)
			closure = append(closure, dep)
		}
	}
	visit(g.rules[target])

	g.transitive[target] = closure
	return closure
}

// Closure returns the set containing the requested targets and all their
// transitive dependencies. It fails with ErrTargetNotFound when a requested
// target is not part of the graph.
func (g *DependencyGraph) Closure(requested []BuildTarget) (map[BuildTarget]bool, error) {
	members := make(map[BuildTarget]bool)
	for _, target := range requested {
		if _, ok := g.rules[target]; !ok {
			return nil, zerr.With(ErrTargetNotFound, "target", target.String())
		}
		if members[target] {
			continue
		}
		members[target] = true

		deps, err := g.TransitiveDependenciesOf(target)
		if err != nil {
			return nil, err
		}
		for _, dep := range deps {
			members[dep.Target()] = true
		}
	}
	return members, nil
}
