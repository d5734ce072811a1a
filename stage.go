package pyext

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Fixed names the Bazel workspace uses to reach the headers.
const (
	pythonStageName = "python"
	numpyStageName  = "numpy"
)

// StagedInput is one header symlink placed inside the Bazel workspace.
type StagedInput struct {
	Link   string // Path of the symlink
	Target string // Directory it points at
}

// StageIncludes places <src>/python and <src>/numpy symlinks pointing at
// the interpreter and numpy header directories.
//
// Both directories are resolved before the filesystem is touched, so a
// resolution failure leaves the workspace as it was. Existing symlinks at
// the staging paths are replaced, which makes repeated calls converge on
// the currently resolved directories. Anything other than a symlink at a
// staging path is left alone and reported as ErrStagingPathOccupied.
func StageIncludes(ctx context.Context, tc *Toolchain, ext *Extension) ([]StagedInput, error) {
	includes := tc.includes()

	pythonDir, err := includes.PythonInclude(ctx)
	if err != nil {
		return nil, err
	}

	numpyDir, err := includes.NumpyInclude(ctx)
	if err != nil {
		return nil, err
	}

	staged := []StagedInput{
		{Link: filepath.Join(ext.SourceDir(), pythonStageName), Target: pythonDir},
		{Link: filepath.Join(ext.SourceDir(), numpyStageName), Target: numpyDir},
	}

	// Check both paths first so a conflict on the second leaves the first untouched.
	for _, s := range staged {
		if err := checkStagingPath(s.Link); err != nil {
			return nil, err
		}
	}

	for _, s := range staged {
		if err := replaceSymlink(s.Target, s.Link); err != nil {
			return nil, err
		}
	}

	return staged, nil
}

// RemoveStagedIncludes deletes the staging symlinks if present. Non-symlink
// entries are never removed.
func RemoveStagedIncludes(ext *Extension) error {
	for _, name := range []string{pythonStageName, numpyStageName} {
		path := filepath.Join(ext.SourceDir(), name)
		if err := checkStagingPath(path); err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove staged %s: %w", path, err)
		}
	}
	return nil
}

func checkStagingPath(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect staging path %s: %w", path, err)
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return fmt.Errorf("%w: %s exists and is not a symlink (mode %s)", ErrStagingPathOccupied, path, info.Mode())
	}
	return nil
}

func replaceSymlink(target, link string) error {
	if err := os.Remove(link); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale symlink %s: %w", link, err)
	}
	if err := os.Symlink(target, link); err != nil {
		return fmt.Errorf("stage %s -> %s: %w", link, target, err)
	}
	return nil
}
