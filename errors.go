package pyext

import (
	"errors"
	"fmt"
)

// Sentinel errors for extension builds. All of them are fatal: the batch
// stops and nothing is retried.
var (
	// ErrToolchainMissing is returned when the builder executable cannot be
	// located or executed.
	ErrToolchainMissing = errors.New("toolchain missing")

	// ErrUnsupportedToolchainVersion is returned when the builder reports a
	// major version other than the required one.
	ErrUnsupportedToolchainVersion = errors.New("unsupported toolchain version")

	// ErrIncludePathUnresolved is returned when a header directory cannot be
	// determined from the interpreter.
	ErrIncludePathUnresolved = errors.New("include path unresolved")

	// ErrStagingPathOccupied is returned when a staging path holds something
	// other than a symlink.
	ErrStagingPathOccupied = errors.New("staging path occupied")

	// ErrExternalBuildFailed is returned when the external build exits non-zero.
	ErrExternalBuildFailed = errors.New("external build failed")

	// ErrArtifactNotFound is returned when the build exited zero but the
	// expected output file is absent.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrNoBuilder is returned when no registered builder accepts an extension.
	ErrNoBuilder = errors.New("no builder")

	// ErrNoExtensions is returned when a project config declares no extensions.
	ErrNoExtensions = errors.New("no extensions configured")
)

// ExternalBuildError reports a non-zero exit from the external builder.
type ExternalBuildError struct {
	Target     string
	ExitStatus int
	Output     []string
	Err        error
}

func (e *ExternalBuildError) Error() string {
	return BuildError("Bazel",
		e.Output,
		fmt.Errorf("%s: target %s exited with status %d", ErrExternalBuildFailed, e.Target, e.ExitStatus),
	).Error()
}

// Unwrap returns the underlying process error.
func (e *ExternalBuildError) Unwrap() error { return e.Err }

// Is reports whether target is ErrExternalBuildFailed.
func (e *ExternalBuildError) Is(target error) bool { return target == ErrExternalBuildFailed }
