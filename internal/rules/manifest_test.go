package rules_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/rules"
)

func writeFile(t *testing.T, root, path, content string) {
	t.Helper()
	full := filepath.Join(root, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
}

// manifestChain builds top -> mid -> leaf, all manifest rules, and returns
// the graph along with the top rule.
func manifestChain(t *testing.T) (*domain.DependencyGraph, *rules.ManifestRule) {
	t.Helper()
	index := rules.Index{}

	leaf, err := rules.NewManifestRule().
		SetTarget(domain.MustParseBuildTarget("//app/leaf:manifest")).
		SetSkeleton("leaf/skeleton.txt").
		SetOutput("out/leaf.manifest").
		Build(index)
	require.NoError(t, err)
	index[leaf.Target()] = leaf

	mid, err := rules.NewManifestRule().
		SetTarget(domain.MustParseBuildTarget("//app/mid:manifest")).
		AddDependency(leaf.Target()).
		SetSkeleton("mid/skeleton.txt").
		SetOutput("out/mid.manifest").
		Build(index)
	require.NoError(t, err)
	index[mid.Target()] = mid

	top, err := rules.NewManifestRule().
		SetTarget(domain.MustParseBuildTarget("//app:manifest")).
		AddDependency(mid.Target()).
		SetSkeleton("app/skeleton.txt").
		SetOutput("out/app.manifest").
		Build(index)
	require.NoError(t, err)

	g, err := domain.NewDependencyGraph([]domain.BuildRule{leaf, mid, top})
	require.NoError(t, err)
	return g, top
}

func TestManifestRule_MergesTransitiveFragments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app/skeleton.txt", "app-skeleton\n")
	writeFile(t, root, "out/leaf.manifest", "leaf-entries\n")
	writeFile(t, root, "out/mid.manifest", "mid-entries\n")

	g, top := manifestChain(t)
	steps, err := top.BuildInternal(&domain.BuildContext{Graph: g, RootDir: root})
	require.NoError(t, err)
	require.Len(t, steps, 1)

	ec := &domain.ExecutionContext{RootDir: root}
	require.NoError(t, steps[0].Execute(context.Background(), ec))

	merged, err := os.ReadFile(filepath.Join(root, "out/app.manifest"))
	require.NoError(t, err)
	// Skeleton first, then fragments in dependency order (leaf before mid).
	assert.Equal(t, "app-skeleton\nleaf-entries\nmid-entries\n", string(merged))
}

func TestManifestRule_MissingSkeletonFails(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "out/leaf.manifest", "leaf-entries\n")
	writeFile(t, root, "out/mid.manifest", "mid-entries\n")

	g, top := manifestChain(t)
	steps, err := top.BuildInternal(&domain.BuildContext{Graph: g, RootDir: root})
	require.NoError(t, err)

	err = steps[0].Execute(context.Background(), &domain.ExecutionContext{RootDir: root})
	require.ErrorContains(t, err, "skeleton")
}

func TestManifestRuleBuilder_RequiresSkeletonAndOutput(t *testing.T) {
	_, err := rules.NewManifestRule().
		SetTarget(domain.MustParseBuildTarget("//app:manifest")).
		SetOutput("out/app.manifest").
		Build(rules.Index{})
	require.ErrorContains(t, err, "skeleton")
}

func TestManifestRule_InputsExcludeFragments(t *testing.T) {
	g, top := manifestChain(t)
	inputs, err := top.InputsToCompareToOutput(&domain.BuildContext{
		Graph:  g,
		Hasher: identityHasher{},
	})
	require.NoError(t, err)

	// Fragments are dependency outputs; only the skeleton and the output
	// path are declared.
	require.Len(t, inputs, 2)
	assert.Contains(t, inputs[0], "app/skeleton.txt")
	assert.Equal(t, "out:out/app.manifest", inputs[1])
}
