// Package pyext provides native extension compilation support for Python
// packages whose extensions are built with Bazel.
//
// This package is the Go equivalent of a setuptools build_ext hook: it
// checks the Bazel toolchain, stages the interpreter and numpy headers inside
// the Bazel workspace, runs the build and installs the produced shared
// object where the packaging workflow expects it.
//
// # Basic Usage
//
// Describe the extensions and build them with a factory:
//
//	factory := pyext.NewBuilderFactory()
//
//	ext, err := pyext.NewExtension("ehr_ml.extension", "extension.so", "native")
//	if err != nil {
//	    return err
//	}
//
//	config := &pyext.BuildConfig{
//	    ProjectDir: "/path/to/project",
//	    BuildLib:   "build/lib",
//	}
//
//	results, err := factory.BuildAllExtensions(ctx, config, pyext.DefaultToolchain(), []*pyext.Extension{ext})
//
// # Build Phases
//
// Each extension goes through four phases:
//
//	ValidateToolchain   bazel --version (once per batch, major version 3)
//	StageInputs         <src>/python and <src>/numpy header symlinks
//	InvokeExternalBuild bazel build -c opt <target>, static libstdc++
//	InstallArtifact     <src>/bazel-bin/<target> -> destination, mode 0700
//
// Every failure is fatal. Nothing is retried, and a failed toolchain check
// aborts the batch before any extension is touched.
//
// # Configuration
//
// Projects usually keep the extension list in pyproject.toml:
//
//	[[tool.pybazel.extension]]
//	name = "ehr_ml.extension"
//	target = "extension.so"
//	sourcedir = "native"
//
// and load it with LoadConfig.
//
// # Platform Support
//
// Linux and macOS. The link overlay assumes a GNU toolchain.
package pyext
