package shell_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/adapters/shell"
	"go.trai.ch/mason/internal/core/domain"
)

func TestStep_Execute(t *testing.T) {
	root := t.TempDir()
	step := &shell.Step{Tool: "sh", Args: []string{"-c", "echo built > out.txt"}}

	err := step.Execute(context.Background(), &domain.ExecutionContext{RootDir: root})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "built\n", string(data))
}

func TestStep_Execute_CapturesOutput(t *testing.T) {
	var stdout bytes.Buffer
	step := &shell.Step{Tool: "sh", Args: []string{"-c", "echo hello"}}

	err := step.Execute(context.Background(), &domain.ExecutionContext{
		RootDir: t.TempDir(),
		Stdout:  &stdout,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", stdout.String())
}

func TestStep_Execute_NonZeroExit(t *testing.T) {
	step := &shell.Step{Tool: "sh", Args: []string{"-c", "exit 3"}}

	err := step.Execute(context.Background(), &domain.ExecutionContext{RootDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3")
}

func TestStep_Execute_MissingTool(t *testing.T) {
	step := &shell.Step{Tool: "definitely-not-a-real-tool"}

	err := step.Execute(context.Background(), &domain.ExecutionContext{RootDir: t.TempDir()})
	require.Error(t, err)
}

func TestStep_Execute_ToolchainOverride(t *testing.T) {
	var stdout bytes.Buffer
	step := &shell.Step{Tool: "compiler", Args: []string{"override works"}}

	err := step.Execute(context.Background(), &domain.ExecutionContext{
		RootDir:   t.TempDir(),
		Toolchain: map[string]string{"compiler": "echo"},
		Stdout:    &stdout,
	})
	require.NoError(t, err)
	assert.Equal(t, "override works\n", stdout.String())
}

func TestStep_Execute_VerboseArg(t *testing.T) {
	var stdout bytes.Buffer
	step := &shell.Step{Tool: "echo", Args: []string{"args"}, VerboseArg: "-chatty"}

	err := step.Execute(context.Background(), &domain.ExecutionContext{
		RootDir: t.TempDir(),
		Verbose: true,
		Stdout:  &stdout,
	})
	require.NoError(t, err)
	assert.Equal(t, "-chatty args\n", stdout.String())
}

func TestStep_Execute_Env(t *testing.T) {
	var stdout bytes.Buffer
	step := &shell.Step{Tool: "sh", Args: []string{"-c", "echo $MASON_TEST_VALUE"}}

	err := step.Execute(context.Background(), &domain.ExecutionContext{
		RootDir: t.TempDir(),
		Env:     []string{"MASON_TEST_VALUE=from-rule"},
		Stdout:  &stdout,
	})
	require.NoError(t, err)
	assert.Equal(t, "from-rule\n", stdout.String())
}

func TestStep_Description(t *testing.T) {
	step := &shell.Step{Tool: "tar", Args: []string{"-c", "-f", "out.tar"}}
	assert.Equal(t, "tar -c -f out.tar", step.Description())
}
