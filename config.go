package pyext

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ProjectConfig is the [tool.pybazel] table of a pyproject.toml.
//
//	[tool.pybazel]
//	bazel = "bazel"
//	python = "python3"
//	build-lib = "build/lib"
//
//	[[tool.pybazel.extension]]
//	name = "ehr_ml.extension"
//	target = "extension.so"
//	sourcedir = "native"
type ProjectConfig struct {
	Bazel      string            `toml:"bazel"`
	Python     string            `toml:"python"`
	BuildLib   string            `toml:"build-lib"`
	Inplace    bool              `toml:"inplace"`
	ExtSuffix  string            `toml:"ext-suffix"`
	Extensions []ExtensionConfig `toml:"extension"`

	// Dir is the directory holding the pyproject.toml; relative paths
	// resolve against it.
	Dir string `toml:"-"`
}

// ExtensionConfig is one [[tool.pybazel.extension]] entry.
type ExtensionConfig struct {
	Name      string `toml:"name"`
	Target    string `toml:"target"`
	SourceDir string `toml:"sourcedir"`
}

type pyproject struct {
	Tool struct {
		PyBazel *ProjectConfig `toml:"pybazel"`
	} `toml:"tool"`
}

// LoadConfig reads the [tool.pybazel] table from the pyproject.toml at path.
func LoadConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolve config directory: %w", err)
	}

	return ParseConfig(data, dir)
}

// ParseConfig decodes pyproject.toml content. dir is the project directory
// relative paths resolve against.
func ParseConfig(data []byte, dir string) (*ProjectConfig, error) {
	var doc pyproject
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := doc.Tool.PyBazel
	if cfg == nil || len(cfg.Extensions) == 0 {
		return nil, fmt.Errorf("%w: add [[tool.pybazel.extension]] entries to pyproject.toml", ErrNoExtensions)
	}

	cfg.Dir = dir
	if cfg.Bazel == "" {
		cfg.Bazel = bazelCommand
	}
	if cfg.Python == "" {
		cfg.Python = pythonCommand
	}
	if cfg.BuildLib == "" {
		cfg.BuildLib = defaultBuildLib
	}

	for i, ext := range cfg.Extensions {
		switch {
		case ext.Name == "":
			return nil, fmt.Errorf("extension #%d: name is required", i+1)
		case ext.Target == "":
			return nil, fmt.Errorf("extension %s: target is required", ext.Name)
		case ext.SourceDir == "":
			return nil, fmt.Errorf("extension %s: sourcedir is required", ext.Name)
		}
	}

	return cfg, nil
}

// BuildExtensions returns the configured extensions with source
// directories resolved against the project directory.
func (c *ProjectConfig) BuildExtensions() ([]*Extension, error) {
	exts := make([]*Extension, 0, len(c.Extensions))
	for _, e := range c.Extensions {
		src := e.SourceDir
		if !filepath.IsAbs(src) {
			src = filepath.Join(c.Dir, src)
		}
		ext, err := NewExtension(e.Name, e.Target, src)
		if err != nil {
			return nil, err
		}
		exts = append(exts, ext)
	}
	return exts, nil
}

// BuildConfig returns the BuildConfig described by the project config.
func (c *ProjectConfig) BuildConfig() *BuildConfig {
	return &BuildConfig{
		ProjectDir: c.Dir,
		BuildLib:   c.BuildLib,
		Inplace:    c.Inplace,
		ExtSuffix:  c.ExtSuffix,
	}
}

// Toolchain returns a Toolchain for the configured executables and the
// current environment.
func (c *ProjectConfig) Toolchain() *Toolchain {
	return NewToolchain(c.Bazel, c.Python)
}
