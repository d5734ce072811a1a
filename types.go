package pyext

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Extension describes one native extension to build.
//
// It carries:
//   - Name: dotted Python module name (e.g. "ehr_ml.extension")
//   - Target: Bazel target, also the file name under bazel-bin/ (e.g. "extension.so")
//   - SourceDir: absolute path of the Bazel workspace holding the target
//
// Extensions are immutable once created with NewExtension.
type Extension struct {
	name      string
	target    string
	sourceDir string
}

// NewExtension creates an Extension, resolving sourceDir to an absolute path.
func NewExtension(name, target, sourceDir string) (*Extension, error) {
	if name == "" {
		return nil, fmt.Errorf("extension name is required")
	}
	if target == "" {
		return nil, fmt.Errorf("extension %s: bazel target is required", name)
	}
	if sourceDir == "" {
		return nil, fmt.Errorf("extension %s: source directory is required", name)
	}

	abs, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("extension %s: resolve source directory: %w", name, err)
	}

	return &Extension{name: name, target: target, sourceDir: abs}, nil
}

// Name returns the dotted Python module name.
func (e *Extension) Name() string { return e.name }

// Target returns the Bazel target identifier.
func (e *Extension) Target() string { return e.target }

// SourceDir returns the absolute Bazel workspace directory.
func (e *Extension) SourceDir() string { return e.sourceDir }

// ArtifactPath returns where Bazel leaves the built target.
func (e *Extension) ArtifactPath() string {
	return filepath.Join(e.sourceDir, "bazel-bin", e.target)
}

func (e *Extension) String() string {
	return fmt.Sprintf("%s (%s in %s)", e.name, e.target, e.sourceDir)
}

// BuildResult contains the output and status of a build operation.
//
// After a build completes, this structure provides:
//   - Success status indicating if the build completed without errors
//   - Output lines captured from the build process
//   - Artifact path produced by the external builder
//   - Installed destination path of the extension
//   - Error information if the build failed
type BuildResult struct {
	Extension *Extension // Extension this result belongs to
	Success   bool       // True if build completed successfully
	Output    []string   // Lines of output from the build process
	Artifact  string     // Path of the artifact inside bazel-bin
	Installed string     // Destination path the artifact was copied to
	Error     error      // Error if build failed, nil otherwise
}

// BuildConfig contains configuration for the build process.
//
// Destination paths:
//   - ProjectDir: Root of the Python project (pyproject.toml lives here)
//   - BuildLib: Directory receiving built extensions, relative to ProjectDir
//   - Inplace: Install next to the Python sources instead of BuildLib
//   - ExtSuffix: Extension file suffix; resolved from the interpreter when empty
//
// Build behavior:
//   - Verbose: Record commands and working directories in BuildResult.Output
//   - Logger: Destination for progress logs (log.Default() when nil)
type BuildConfig struct {
	ProjectDir string
	BuildLib   string
	Inplace    bool
	ExtSuffix  string

	Verbose bool
	Logger  *log.Logger
}

func (c *BuildConfig) logger() *log.Logger {
	if c != nil && c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

// BuildSteps defines the phases a builder runs for one extension.
//
// Phases run in order and processing stops at the first error:
//  1. Stage: place inputs the external build expects (header symlinks)
//  2. Build: run the external build system
//  3. Install: copy the artifact to the packaging destination
type BuildSteps struct {
	StageFunc   func(ctx context.Context, ext *Extension, result *BuildResult) error
	BuildFunc   func(ctx context.Context, ext *Extension, result *BuildResult) error
	InstallFunc func(ctx context.Context, ext *Extension, result *BuildResult) error
}
