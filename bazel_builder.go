package pyext

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/magefile/mage/sh"
)

// requiredBazelMajor is the only Bazel major version the workspaces build with.
const requiredBazelMajor = "3"

// BazelBuilder builds extensions from a Bazel workspace.
//
// For each extension it:
//  1. Stages <src>/python and <src>/numpy header symlinks
//  2. Runs "bazel build -c opt <target>" in <src> with the link overlay
//  3. Copies <src>/bazel-bin/<target> to the packaging destination (mode 0700)
//
// The toolchain check ("bazel --version", major version 3) is run once per
// batch by the factory through CheckTools.
type BazelBuilder struct {
	// Overlay is applied to the build environment. The zero value means
	// DefaultLinkOverlay().
	Overlay LinkOverlay
}

// NewBazelBuilder returns a BazelBuilder with the default link overlay.
func NewBazelBuilder() *BazelBuilder {
	return &BazelBuilder{Overlay: DefaultLinkOverlay()}
}

// Name returns the builder name
func (b *BazelBuilder) Name() string {
	return "Bazel"
}

// RequiredTools returns the tools needed for Bazel builds
func (b *BazelBuilder) RequiredTools() []ToolRequirement {
	return []ToolRequirement{
		{
			Name:         bazelCommand,
			Purpose:      "Bazel build system",
			MajorVersion: requiredBazelMajor,
		},
	}
}

// CheckTools verifies that a supported Bazel is available
func (b *BazelBuilder) CheckTools(ctx context.Context, tc *Toolchain) error {
	_, err := b.ValidateToolchain(ctx, tc)
	return err
}

// CanBuild accepts any target that maps to a file under bazel-bin. Labels
// ("//pkg:name", ":name") do not, so they are refused.
func (b *BazelBuilder) CanBuild(ext *Extension) bool {
	if ext == nil || ext.Target() == "" {
		return false
	}
	return !strings.Contains(ext.Target(), "//") && !strings.Contains(ext.Target(), ":")
}

// toolRequirements resolves RequiredTools against tc: the configured bazel
// binary, plus the interpreter when headers are looked up by running it.
func (b *BazelBuilder) toolRequirements(tc *Toolchain) []ToolRequirement {
	reqs := b.RequiredTools()
	reqs[0].Name = tc.bazel()

	if p, ok := tc.includes().(*PythonIncludes); ok {
		reqs = append(reqs, ToolRequirement{
			Name:    p.python(),
			Purpose: "Python interpreter for header lookup",
		})
	}
	return reqs
}

// ValidateToolchain runs "bazel --version" and returns the reported version.
//
// Returns ErrToolchainMissing if bazel (or the interpreter used to locate
// headers) cannot be located or executed, and ErrUnsupportedToolchainVersion
// if the Bazel major version is not 3.
func (b *BazelBuilder) ValidateToolchain(ctx context.Context, tc *Toolchain) (string, error) {
	reqs := b.toolRequirements(tc)
	if err := CheckRequiredTools(reqs); err != nil {
		return "", err
	}

	req := reqs[0]
	path, err := execLookPath(req.Name)
	if err != nil {
		return "", fmt.Errorf("%w: cannot find %s executable: %v", ErrToolchainMissing, req.Name, err)
	}

	//nolint:gosec // Builder path comes from trusted configuration
	cmd := execCommandContext(ctx, path, "--version")
	cmd.Env = tc.environ()

	out, err := cmd.Output()
	if err != nil {
		if !sh.CmdRan(err) {
			return "", fmt.Errorf("%w: cannot execute %s: %v", ErrToolchainMissing, path, err)
		}
		return "", fmt.Errorf("%w: %s --version exited with status %d", ErrToolchainMissing, path, sh.ExitStatus(err))
	}

	version := strings.TrimSpace(string(out))
	if err := CheckVersion(req, version); err != nil {
		return "", err
	}
	return version, nil
}

// StageInputs places the interpreter and numpy header symlinks inside the
// extension's workspace.
func (b *BazelBuilder) StageInputs(ctx context.Context, tc *Toolchain, ext *Extension) ([]StagedInput, error) {
	return StageIncludes(ctx, tc, ext)
}

// InvokeExternalBuild runs "bazel build -c opt <target>" in the extension's
// workspace with the link overlay applied. Output lines are appended to
// result when it is non-nil.
//
// A non-zero exit is returned as *ExternalBuildError, which matches
// ErrExternalBuildFailed.
func (b *BazelBuilder) InvokeExternalBuild(ctx context.Context, config *BuildConfig, tc *Toolchain, ext *Extension, result *BuildResult) error {
	logger := config.logger()
	overlay := b.overlay()
	bazel := tc.bazel()
	args := []string{"build", "-c", "opt", ext.Target()}

	//nolint:gosec // Builder path comes from trusted configuration
	cmd := execCommandContext(ctx, bazel, args...)
	cmd.Dir = ext.SourceDir()
	cmd.Env = overlay.Apply(tc.environ())

	logger.Debug("link overlay", EnvLinkLibs, overlay.LinkLibs, EnvLinkOpts, overlay.LinkOpts)
	logger.Debug("running bazel", "args", strings.Join(args, " "), "dir", cmd.Dir)

	output, err := cmd.CombinedOutput()
	lines := splitOutput(output)

	if result != nil {
		result.Output = append(result.Output, lines...)
		if config != nil && config.Verbose {
			result.Output = append(result.Output,
				fmt.Sprintf("Running: %s %s", bazel, strings.Join(args, " ")),
				fmt.Sprintf("Working directory: %s", cmd.Dir),
				fmt.Sprintf("Environment: %s", strings.Join(overlay.Vars(), " ")))
		}
	}

	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("%w: cannot execute %s in %s: %v", ErrToolchainMissing, bazel, cmd.Dir, err)
	}

	return &ExternalBuildError{
		Target:     ext.Target(),
		ExitStatus: sh.ExitStatus(err),
		Output:     lines,
		Err:        err,
	}
}

// InstallArtifact copies <src>/bazel-bin/<target> to destination, creating
// missing parent directories, and sets its mode to 0700.
//
// Returns ErrArtifactNotFound, without creating destination, when the
// build left no artifact behind.
func (b *BazelBuilder) InstallArtifact(ext *Extension, destination string) error {
	return installArtifact(ext.ArtifactPath(), destination)
}

// Build compiles the extension and installs it at the path resolved from config.
func (b *BazelBuilder) Build(ctx context.Context, config *BuildConfig, tc *Toolchain, ext *Extension) (*BuildResult, error) {
	if config == nil {
		config = &BuildConfig{}
	}
	logger := config.logger().With("extension", ext.Name())

	return runBuildSteps(ctx, ext, BuildSteps{
		StageFunc: func(ctx context.Context, ext *Extension, result *BuildResult) error {
			staged, err := b.StageInputs(ctx, tc, ext)
			if err != nil {
				return err
			}
			for _, s := range staged {
				logger.Debug("staged include", "link", s.Link, "target", s.Target)
			}
			return nil
		},
		BuildFunc: func(ctx context.Context, ext *Extension, result *BuildResult) error {
			logger.Info("building", "target", ext.Target(), "dir", ext.SourceDir())
			return b.InvokeExternalBuild(ctx, config, tc, ext, result)
		},
		InstallFunc: func(ctx context.Context, ext *Extension, result *BuildResult) error {
			dest, err := ExtFullPath(ctx, config, tc, ext)
			if err != nil {
				return err
			}
			if err := b.InstallArtifact(ext, dest); err != nil {
				return err
			}
			result.Artifact = ext.ArtifactPath()
			result.Installed = dest
			logger.Info("installed", "path", dest)
			return nil
		},
	})
}

// Clean removes the staged header symlinks and runs "bazel clean" in the
// extension's workspace.
func (b *BazelBuilder) Clean(ctx context.Context, config *BuildConfig, tc *Toolchain, ext *Extension) error {
	if err := RemoveStagedIncludes(ext); err != nil {
		return err
	}

	//nolint:gosec // Builder path comes from trusted configuration
	cmd := execCommandContext(ctx, tc.bazel(), "clean")
	cmd.Dir = ext.SourceDir()
	cmd.Env = tc.environ()

	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("%w: cannot execute %s: %v", ErrToolchainMissing, tc.bazel(), err)
		}
		return BuildError("Bazel Clean", splitOutput(output), err)
	}

	config.logger().Debug("cleaned", "extension", ext.Name(), "dir", ext.SourceDir())
	return nil
}

func (b *BazelBuilder) overlay() LinkOverlay {
	if b.Overlay == (LinkOverlay{}) {
		return DefaultLinkOverlay()
	}
	return b.Overlay
}
