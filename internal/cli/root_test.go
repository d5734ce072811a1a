package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pyext "github.com/contriboss/python-extension-go"
)

const testPyproject = `
[[tool.pybazel.extension]]
name = "ehr_ml.extension"
target = "extension.so"
sourcedir = "native"
`

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, logs bytes.Buffer
	root := NewRootCommand(&logs)
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeProject(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "native"), 0o755))
	path := filepath.Join(dir, "pyproject.toml")
	require.NoError(t, os.WriteFile(path, []byte(testPyproject), 0o600))
	return path
}

func TestRootCommandStructure(t *testing.T) {
	root := NewRootCommand(&bytes.Buffer{})

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"build", "check", "clean"})

	for _, flag := range []string{"verbose", "config", "bazel", "python"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionFlag(t *testing.T) {
	SetVersion("v1.2.3", "abc123", "2026-10-15")
	defer SetVersion("dev", "", "")

	out, err := runRoot(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "pybazel v1.2.3")
	assert.Contains(t, out, "commit: abc123")
}

func TestBuildMissingConfig(t *testing.T) {
	_, err := runRoot(t, "build", "--config", filepath.Join(t.TempDir(), "pyproject.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestBuildMissingBazel(t *testing.T) {
	path := writeProject(t)

	_, err := runRoot(t, "build", "--config", path, "--bazel", filepath.Join(t.TempDir(), "no-bazel"))
	require.Error(t, err)
	assert.ErrorIs(t, err, pyext.ErrToolchainMissing)

	_, statErr := os.Lstat(filepath.Join(filepath.Dir(path), "native", "python"))
	assert.True(t, os.IsNotExist(statErr), "nothing may be staged when bazel is missing")
}

func TestCheckMissingBazel(t *testing.T) {
	path := writeProject(t)

	_, err := runRoot(t, "check", "--config", path, "--bazel", filepath.Join(t.TempDir(), "no-bazel"))
	assert.ErrorIs(t, err, pyext.ErrToolchainMissing)
}

func TestLoggerFromContext(t *testing.T) {
	assert.Equal(t, log.Default(), loggerFromContext(context.Background()))

	l := newLogger(&bytes.Buffer{}, log.DebugLevel)
	assert.Same(t, l, loggerFromContext(withLogger(context.Background(), l)))
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	p := newProgress(newLogger(&buf, log.InfoLevel))
	p.done("Built 1 extension(s)")

	assert.Contains(t, buf.String(), "Built 1 extension(s) (")
}
