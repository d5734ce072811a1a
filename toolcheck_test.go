package pyext

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMajorVersion(t *testing.T) {
	testCases := []struct {
		output string
		major  string
		ok     bool
	}{
		{"bazel 3.7.0", "3", true},
		{"bazel 3.7.0\n", "3", true},
		{"bazel 3.4.1- (@non-git)", "3", true},
		{"bazel 4.2.1", "4", true},
		{"bazel 30.0.0", "30", true},
		{"bazel 3", "3", true},
		{"bazel", "", false},
		{"", "", false},
		{"bazel .1", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.output, func(t *testing.T) {
			major, ok := ParseMajorVersion(tc.output)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.major, major)
		})
	}
}

func TestCheckVersion(t *testing.T) {
	req := ToolRequirement{Name: "bazel", MajorVersion: "3"}

	for _, good := range []string{"bazel 3.0.0", "bazel 3.7.0", "bazel 3.7.2- (@non-git)"} {
		assert.NoError(t, CheckVersion(req, good), good)
	}

	for _, bad := range []string{"bazel 2.2.0", "bazel 4.0.0", "bazel 30.1.0", "bazel", "Build label: 3.7.0"} {
		err := CheckVersion(req, bad)
		require.Error(t, err, bad)
		assert.ErrorIs(t, err, ErrUnsupportedToolchainVersion, bad)
	}

	assert.NoError(t, CheckVersion(ToolRequirement{Name: "any"}, "whatever"))
}

func TestCheckRequiredTools(t *testing.T) {
	origLookPath := execLookPath
	defer func() { execLookPath = origLookPath }()

	available := map[string]bool{"python3": true}
	execLookPath = func(name string) (string, error) {
		if available[name] {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}

	t.Run("all present", func(t *testing.T) {
		err := CheckRequiredTools([]ToolRequirement{
			{Name: "python3", Purpose: "Python interpreter for header lookup"},
		})
		assert.NoError(t, err)
	})

	t.Run("single missing", func(t *testing.T) {
		err := CheckRequiredTools([]ToolRequirement{
			{Name: "bazel", Purpose: "Bazel build system"},
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrToolchainMissing))
		assert.Equal(t, "toolchain missing: bazel (Bazel build system) not found in PATH", err.Error())
	})

	t.Run("multiple missing", func(t *testing.T) {
		err := CheckRequiredTools([]ToolRequirement{
			{Name: "bazel", Purpose: "Bazel build system"},
			{Name: "gcc"},
		})
		require.Error(t, err)
		assert.Equal(t, "toolchain missing: missing required tools: bazel (Bazel build system), gcc", err.Error())
	})
}
