package pyext

import (
	"context"
	"fmt"
	"strings"
)

// ToolChecker is an optional interface for builders that require external tools.
//
// The factory calls CheckTools once per batch, for every builder that will
// be used, before any extension is built. A failing check aborts the whole
// batch.
//
// # Example Implementation
//
//	func (b *BazelBuilder) RequiredTools() []ToolRequirement {
//	    return []ToolRequirement{
//	        {Name: "bazel", Purpose: "Bazel build system", MajorVersion: "3"},
//	    }
//	}
//
//	func (b *BazelBuilder) CheckTools(ctx context.Context, tc *Toolchain) error {
//	    _, err := b.ValidateToolchain(ctx, tc)
//	    return err
//	}
type ToolChecker interface {
	// RequiredTools returns the list of tools this builder needs.
	RequiredTools() []ToolRequirement

	// CheckTools verifies that all required tools are available and
	// recent enough.
	CheckTools(ctx context.Context, tc *Toolchain) error
}

// ToolRequirement describes a build tool dependency.
//
// # Examples
//
// Required tool with a pinned major version:
//
//	ToolRequirement{
//	    Name:         "bazel",
//	    Purpose:      "Bazel build system",
//	    MajorVersion: "3",
//	}
//
// Tool that only has to exist:
//
//	ToolRequirement{
//	    Name:    "python3",
//	    Purpose: "Python interpreter for header lookup",
//	}
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g., "bazel").
	Name string

	// Purpose is a human-readable description of why this tool is needed.
	Purpose string

	// MajorVersion, when set, is the exact major version the tool must report.
	MajorVersion string
}

// CheckToolAvailable checks if a tool is available in the system PATH.
//
// Returns an error wrapping ErrToolchainMissing if not found.
func CheckToolAvailable(tool string) error {
	if _, err := execLookPath(tool); err != nil {
		return fmt.Errorf("%w: %s not found in PATH", ErrToolchainMissing, tool)
	}
	return nil
}

// CheckRequiredTools verifies all required tools are available and returns
// every missing one in a single error.
//
// # Error Format
//
// Single missing tool:
//
//	toolchain missing: bazel (Bazel build system) not found in PATH
//
// Multiple missing tools:
//
//	toolchain missing: missing required tools: bazel (Bazel build system), python3
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missingTools []string

	for _, req := range requirements {
		if CheckToolAvailable(req.Name) != nil {
			if req.Purpose != "" {
				missingTools = append(missingTools, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
			} else {
				missingTools = append(missingTools, req.Name)
			}
		}
	}

	if len(missingTools) == 0 {
		return nil
	}

	if len(missingTools) == 1 {
		return fmt.Errorf("%w: %s not found in PATH", ErrToolchainMissing, missingTools[0])
	}

	return fmt.Errorf("%w: missing required tools: %s", ErrToolchainMissing, strings.Join(missingTools, ", "))
}

// ParseMajorVersion extracts the major version from a "--version" line
// such as "bazel 3.7.0" or "bazel 3.7.2- (@non-git)". The version is the
// second whitespace-separated field; the major component is everything
// before its first dot.
func ParseMajorVersion(versionOutput string) (string, bool) {
	fields := strings.Fields(versionOutput)
	if len(fields) < 2 {
		return "", false
	}

	major, _, _ := strings.Cut(fields[1], ".")
	if major == "" {
		return "", false
	}
	return major, true
}

// CheckVersion verifies that versionOutput reports the required major version.
func CheckVersion(req ToolRequirement, versionOutput string) error {
	if req.MajorVersion == "" {
		return nil
	}

	major, ok := ParseMajorVersion(versionOutput)
	if !ok || major != req.MajorVersion {
		return fmt.Errorf("%w: need %s %s.x, got %q",
			ErrUnsupportedToolchainVersion, req.Name, req.MajorVersion, strings.TrimSpace(versionOutput))
	}
	return nil
}
