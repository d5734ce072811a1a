package pyext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultBuildLib = "build/lib"
	installMode     = 0o700
)

// ExtFilename converts a dotted module name into the relative path of its
// extension file: "ehr_ml.extension" with ".so" becomes "ehr_ml/extension.so".
func ExtFilename(name, suffix string) string {
	return filepath.Join(strings.Split(name, ".")...) + suffix
}

// ExtFullPath returns where the packaging workflow expects the extension
// named ext.Name() to be installed.
//
// The base directory is config.BuildLib (relative to config.ProjectDir,
// default "build/lib"), or config.ProjectDir itself for in-place builds.
// The suffix is config.ExtSuffix, or the interpreter's EXT_SUFFIX.
func ExtFullPath(ctx context.Context, config *BuildConfig, tc *Toolchain, ext *Extension) (string, error) {
	projectDir := config.ProjectDir
	if projectDir == "" {
		projectDir = "."
	}

	base := projectDir
	if !config.Inplace {
		buildLib := config.BuildLib
		if buildLib == "" {
			buildLib = defaultBuildLib
		}
		if filepath.IsAbs(buildLib) {
			base = buildLib
		} else {
			base = filepath.Join(projectDir, buildLib)
		}
	}

	suffix := config.ExtSuffix
	if suffix == "" {
		var err error
		suffix, err = tc.includes().ExtSuffix(ctx)
		if err != nil {
			return "", fmt.Errorf("resolve extension suffix for %s: %w", ext.Name(), err)
		}
	}

	dest, err := filepath.Abs(filepath.Join(base, ExtFilename(ext.Name(), suffix)))
	if err != nil {
		return "", fmt.Errorf("resolve destination for %s: %w", ext.Name(), err)
	}
	return dest, nil
}

// installArtifact copies src to dest, creating dest's parent directories,
// and forces dest to owner-only rwx. A missing src is ErrArtifactNotFound
// and leaves dest untouched.
func installArtifact(src, dest string) error {
	info, err := os.Stat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrArtifactNotFound, src)
	}
	if err != nil {
		return fmt.Errorf("inspect artifact %s: %w", src, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrArtifactNotFound, src)
	}

	if err := copyFile(src, dest); err != nil {
		return fmt.Errorf("install %s -> %s: %w", src, dest, err)
	}

	// OpenFile only applies the mode on creation; an overwritten file keeps
	// its old bits.
	if err := os.Chmod(dest, installMode); err != nil {
		return fmt.Errorf("chmod %s: %w", dest, err)
	}
	return nil
}

func copyFile(srcPath, destPath string) error {
	dir := filepath.Dir(destPath)
	if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
		return mkErr
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, installMode)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
