// Package config provides the configuration loader for mason.
package config

import (
	"os"
	"sort"
	"strings"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/rules"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the configuration file looked up when the caller does
// not name one.
const DefaultFilename = "mason.yaml"

var _ ports.ConfigLoader = (*FileLoader)(nil)

// FileLoader implements ports.ConfigLoader using a YAML file.
type FileLoader struct{}

// Load reads the configuration file at the given path.
func (l *FileLoader) Load(path string) (*domain.DependencyGraph, error) {
	if path == "" {
		path = DefaultFilename
	}
	return Load(path)
}

// descriptor is a parsed but unresolved rule declaration.
type descriptor struct {
	target domain.BuildTarget
	dto    RuleDTO
	deps   []domain.BuildTarget
}

// Load reads a configuration file and returns a validated dependency graph.
// Construction is two-phase: every declaration is parsed into a descriptor
// first, then descriptors are built in dependency order, threading the
// accumulating target index through the rule builders.
func Load(path string) (*domain.DependencyGraph, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var masonfile Masonfile
	if err := yaml.Unmarshal(data, &masonfile); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	descriptors, err := parseDescriptors(&masonfile)
	if err != nil {
		return nil, err
	}

	ordered, err := constructionOrder(descriptors)
	if err != nil {
		return nil, err
	}

	index := make(rules.Index, len(ordered))
	built := make([]domain.BuildRule, 0, len(ordered))
	for _, desc := range ordered {
		rule, err := buildRule(desc, index)
		if err != nil {
			return nil, err
		}
		index[rule.Target()] = rule
		built = append(built, rule)
	}

	return domain.NewDependencyGraph(built)
}

// parseDescriptors validates target syntax and dependency references.
// Descriptors are ordered by name so construction is reproducible.
func parseDescriptors(masonfile *Masonfile) ([]*descriptor, error) {
	names := make([]string, 0, len(masonfile.Rules))
	for name := range masonfile.Rules {
		names = append(names, name)
	}
	sort.Strings(names)

	declared := make(map[domain.BuildTarget]bool, len(names))
	descriptors := make([]*descriptor, 0, len(names))
	for _, name := range names {
		target, err := domain.ParseBuildTarget(name)
		if err != nil {
			return nil, err
		}
		declared[target] = true

		dto := masonfile.Rules[name]
		desc := &descriptor{target: target, dto: dto}
		for _, dep := range dto.Deps {
			depTarget, err := domain.ParseBuildTarget(dep)
			if err != nil {
				return nil, err
			}
			desc.deps = append(desc.deps, depTarget)
		}
		descriptors = append(descriptors, desc)
	}

	for _, desc := range descriptors {
		for _, dep := range desc.deps {
			if !declared[dep] {
				return nil, zerr.With(
					zerr.With(domain.ErrUnresolvedDependency, "target", desc.target.String()),
					"dependency", dep.String())
			}
		}
	}
	return descriptors, nil
}

// constructionOrder sorts descriptors so every rule is built after its
// dependencies. A cycle among declarations is reported before any rule is
// constructed.
func constructionOrder(descriptors []*descriptor) ([]*descriptor, error) {
	byTarget := make(map[domain.BuildTarget]*descriptor, len(descriptors))
	inDegree := make(map[domain.BuildTarget]int, len(descriptors))
	dependents := make(map[domain.BuildTarget][]domain.BuildTarget)

	for _, desc := range descriptors {
		byTarget[desc.target] = desc
		inDegree[desc.target] = len(desc.deps)
	}
	for _, desc := range descriptors {
		for _, dep := range desc.deps {
			dependents[dep] = append(dependents[dep], desc.target)
		}
	}

	var ready []*descriptor
	for _, desc := range descriptors {
		if inDegree[desc.target] == 0 {
			ready = append(ready, desc)
		}
	}

	ordered := make([]*descriptor, 0, len(descriptors))
	for len(ready) > 0 {
		desc := ready[0]
		ready = ready[1:]
		ordered = append(ordered, desc)

		for _, dependent := range dependents[desc.target] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = append(ready, byTarget[dependent])
			}
		}
	}

	if len(ordered) != len(descriptors) {
		var stuck []string
		for _, desc := range descriptors {
			if inDegree[desc.target] > 0 {
				stuck = append(stuck, desc.target.String())
			}
		}
		return nil, zerr.With(domain.ErrCycleDetected, "targets", strings.Join(stuck, ", "))
	}
	return ordered, nil
}

func buildRule(desc *descriptor, index rules.Index) (domain.BuildRule, error) {
	switch domain.RuleType(desc.dto.Type) {
	case domain.RuleTypeCommand:
		b := rules.NewCommandRule().
			SetTarget(desc.target).
			SetArgv(desc.dto.Cmd).
			SetOutput(desc.dto.Output)
		for _, input := range desc.dto.Inputs {
			b.AddInput(input)
		}
		for _, dep := range desc.deps {
			b.AddDependency(dep)
		}
		return b.Build(index)

	case domain.RuleTypeManifest:
		b := rules.NewManifestRule().
			SetTarget(desc.target).
			SetSkeleton(desc.dto.Skeleton).
			SetOutput(desc.dto.Output)
		for _, dep := range desc.deps {
			b.AddDependency(dep)
		}
		return b.Build(index)

	case domain.RuleTypePackage:
		b := rules.NewPackageRule().
			SetTarget(desc.target).
			SetOutput(desc.dto.Output)
		for _, dir := range desc.dto.ResourceDirs {
			b.AddResourceDir(dir)
		}
		for _, dep := range desc.deps {
			b.AddDependency(dep)
		}
		return b.Build(index)

	default:
		return nil, zerr.With(
			zerr.With(zerr.New("unknown rule type"), "target", desc.target.String()),
			"type", desc.dto.Type)
	}
}
