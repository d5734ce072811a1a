//go:build mage

// Mage targets for building the extensions of the project in the current
// directory:
//
//	mage check   # bazel 3.x is installed
//	mage build   # build and install every extension
//	mage clean   # remove staged headers and bazel outputs
//
// PYBAZEL_CONFIG overrides the pyproject.toml path.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/magefile/mage/mg"

	pyext "github.com/contriboss/python-extension-go"
)

func project() (*pyext.ProjectConfig, error) {
	path := os.Getenv("PYBAZEL_CONFIG")
	if path == "" {
		path = "pyproject.toml"
	}
	return pyext.LoadConfig(path)
}

func logger() *log.Logger {
	level := log.InfoLevel
	if mg.Verbose() {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{Level: level, ReportTimestamp: true})
}

// Check verifies that bazel 3.x is available.
func Check(ctx context.Context) error {
	cfg, err := project()
	if err != nil {
		return err
	}
	version, err := pyext.NewBazelBuilder().ValidateToolchain(ctx, cfg.Toolchain())
	if err != nil {
		return mg.Fatal(1, err)
	}
	logger().Info("toolchain ok", "bazel", version)
	return nil
}

// Build checks the toolchain, then builds and installs every extension
// listed in pyproject.toml.
func Build(ctx context.Context) error {
	cfg, err := project()
	if err != nil {
		return err
	}
	exts, err := cfg.BuildExtensions()
	if err != nil {
		return err
	}

	config := cfg.BuildConfig()
	config.Logger = logger()
	config.Verbose = mg.Verbose()

	results, err := pyext.NewBuilderFactory().BuildAllExtensions(ctx, config, cfg.Toolchain(), exts)
	if err != nil {
		return mg.Fatal(1, err)
	}
	for _, r := range results {
		fmt.Println(r.Installed)
	}
	return nil
}

// Clean removes staged headers and bazel outputs.
func Clean(ctx context.Context) error {
	cfg, err := project()
	if err != nil {
		return err
	}
	exts, err := cfg.BuildExtensions()
	if err != nil {
		return err
	}
	config := cfg.BuildConfig()
	config.Logger = logger()
	return pyext.NewBuilderFactory().CleanAllExtensions(ctx, config, cfg.Toolchain(), exts)
}
