package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inTempProject(t *testing.T, configContent string) {
	t.Helper()
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(tmpDir+"/mason.yaml", []byte(configContent), 0o600))
	t.Chdir(tmpDir)
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	original := os.Args
	t.Cleanup(func() { os.Args = original })
	os.Args = append([]string{"mason"}, args...)
}

func TestRun_Success(t *testing.T) {
	inTempProject(t, `
version: "1"
rules:
  "//app:out":
    type: command
    inputs: []
    cmd: [sh, -c, "echo hello > out.txt"]
    output: out.txt
`)
	withArgs(t, "build", "//app:out")

	assert.Equal(t, exitOK, run())

	data, err := os.ReadFile("out.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestRun_BuildFailure(t *testing.T) {
	inTempProject(t, `
version: "1"
rules:
  "//app:broken":
    type: command
    cmd: [sh, -c, "exit 1"]
`)
	withArgs(t, "build", "//app:broken")

	assert.Equal(t, exitBuild, run())
}

func TestRun_PlanningError(t *testing.T) {
	inTempProject(t, `
version: "1"
rules:
  "//app:a":
    type: command
    cmd: [touch, a]
    deps: ["//app:b"]
  "//app:b":
    type: command
    cmd: [touch, b]
    deps: ["//app:a"]
`)
	withArgs(t, "build", "//app:a")

	assert.Equal(t, exitPlanning, run())
}
