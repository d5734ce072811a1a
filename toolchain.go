package pyext

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/sh"
)

// Indirections for tests.
var (
	execLookPath       = exec.LookPath
	execCommandContext = exec.CommandContext
)

const (
	bazelCommand  = "bazel"
	pythonCommand = "python3"
)

// Interpreter queries used by PythonIncludes.
const (
	includePyScript  = `import sysconfig; print(sysconfig.get_config_var("INCLUDEPY") or "")`
	numpyScript      = `import numpy; print(numpy.get_include())`
	extSuffixScript  = `import sysconfig; print(sysconfig.get_config_var("EXT_SUFFIX") or "")`
	defaultExtSuffix = ".so"
)

// Toolchain is the ambient state a build reads: which binaries to run, the
// process environment handed to them and where the headers live.
//
// Passing it explicitly keeps the builders free of process-global lookups,
// so tests can substitute every piece.
type Toolchain struct {
	// Bazel is the builder executable (name on PATH or absolute path).
	Bazel string

	// Python is the interpreter queried for header locations when Includes
	// is nil (name on PATH or absolute path).
	Python string

	// Environ is the ambient environment the overlay is applied to.
	// nil means os.Environ() at the time of the call.
	Environ []string

	// Includes resolves interpreter and numpy header directories.
	Includes IncludeResolver
}

// DefaultToolchain returns a Toolchain for the current process: bazel and
// python3 from PATH and the current environment.
func DefaultToolchain() *Toolchain {
	return NewToolchain(bazelCommand, pythonCommand)
}

// NewToolchain returns a Toolchain using the given bazel and python
// executables and the current environment.
func NewToolchain(bazel, python string) *Toolchain {
	environ := os.Environ()
	return &Toolchain{
		Bazel:    bazel,
		Python:   python,
		Environ:  environ,
		Includes: &PythonIncludes{Python: python, Environ: environ},
	}
}

func (tc *Toolchain) bazel() string {
	if tc == nil || tc.Bazel == "" {
		return bazelCommand
	}
	return tc.Bazel
}

// environ returns a copy of the ambient environment.
func (tc *Toolchain) environ() []string {
	if tc == nil || tc.Environ == nil {
		return os.Environ()
	}
	return append([]string(nil), tc.Environ...)
}

func (tc *Toolchain) python() string {
	if tc == nil || tc.Python == "" {
		return pythonCommand
	}
	return tc.Python
}

// includes returns tc.Includes, or a resolver that runs tc.Python.
func (tc *Toolchain) includes() IncludeResolver {
	if tc == nil || tc.Includes == nil {
		return &PythonIncludes{Python: tc.python(), Environ: tc.environ()}
	}
	return tc.Includes
}

// IncludeResolver locates the headers and naming conventions of the target
// Python interpreter.
type IncludeResolver interface {
	// PythonInclude returns the interpreter header directory (INCLUDEPY).
	PythonInclude(ctx context.Context) (string, error)

	// NumpyInclude returns the numpy header directory.
	NumpyInclude(ctx context.Context) (string, error)

	// ExtSuffix returns the extension module suffix (EXT_SUFFIX).
	ExtSuffix(ctx context.Context) (string, error)
}

// PythonIncludes asks a Python interpreter for its configuration.
type PythonIncludes struct {
	Python  string
	Environ []string
}

// PythonInclude returns sysconfig's INCLUDEPY.
func (p *PythonIncludes) PythonInclude(ctx context.Context) (string, error) {
	dir, err := p.eval(ctx, includePyScript)
	if err != nil {
		return "", fmt.Errorf("%w: INCLUDEPY: %w", ErrIncludePathUnresolved, err)
	}
	if dir == "" {
		return "", fmt.Errorf("%w: INCLUDEPY is not set for %s", ErrIncludePathUnresolved, p.python())
	}
	return dir, nil
}

// NumpyInclude returns numpy.get_include().
func (p *PythonIncludes) NumpyInclude(ctx context.Context) (string, error) {
	dir, err := p.eval(ctx, numpyScript)
	if err != nil {
		return "", fmt.Errorf("%w: numpy: %w", ErrIncludePathUnresolved, err)
	}
	if dir == "" {
		return "", fmt.Errorf("%w: numpy reported no include directory", ErrIncludePathUnresolved)
	}
	return dir, nil
}

// ExtSuffix returns sysconfig's EXT_SUFFIX, or ".so" when the interpreter
// does not define one.
func (p *PythonIncludes) ExtSuffix(ctx context.Context) (string, error) {
	suffix, err := p.eval(ctx, extSuffixScript)
	if err != nil {
		return "", fmt.Errorf("EXT_SUFFIX: %w", err)
	}
	if suffix == "" {
		return defaultExtSuffix, nil
	}
	return suffix, nil
}

func (p *PythonIncludes) python() string {
	if p.Python == "" {
		return pythonCommand
	}
	return p.Python
}

func (p *PythonIncludes) eval(ctx context.Context, script string) (string, error) {
	python := p.python()

	//nolint:gosec // Interpreter path comes from trusted configuration
	cmd := execCommandContext(ctx, python, "-c", script)
	if p.Environ != nil {
		cmd.Env = p.Environ
	}

	out, err := cmd.Output()
	if err != nil {
		if !sh.CmdRan(err) {
			return "", fmt.Errorf("%w: %s could not be executed: %v", ErrToolchainMissing, python, err)
		}
		return "", fmt.Errorf("%s exited with status %d", python, sh.ExitStatus(err))
	}

	return strings.TrimSpace(string(out)), nil
}

// StaticIncludes is an IncludeResolver with fixed answers, for
// environments where the header locations are already known.
type StaticIncludes struct {
	Python string
	Numpy  string
	Suffix string
}

// PythonInclude returns the configured interpreter header directory.
func (s StaticIncludes) PythonInclude(context.Context) (string, error) {
	if s.Python == "" {
		return "", fmt.Errorf("%w: no interpreter include directory configured", ErrIncludePathUnresolved)
	}
	return s.Python, nil
}

// NumpyInclude returns the configured numpy header directory.
func (s StaticIncludes) NumpyInclude(context.Context) (string, error) {
	if s.Numpy == "" {
		return "", fmt.Errorf("%w: no numpy include directory configured", ErrIncludePathUnresolved)
	}
	return s.Numpy, nil
}

// ExtSuffix returns the configured suffix, or ".so".
func (s StaticIncludes) ExtSuffix(context.Context) (string, error) {
	if s.Suffix == "" {
		return defaultExtSuffix, nil
	}
	return s.Suffix, nil
}
