package pyext

import "context"

// Builder defines the interface that all extension builders must implement.
//
// Each builder is responsible for one external build system and must
// implement these methods to integrate with the BuilderFactory.
//
// # Builder Lifecycle
//
//  1. CanBuild() - Factory calls this to find the right builder for an extension
//  2. CheckTools() - Factory calls this once per batch, before any build (ToolChecker)
//  3. Build() - Factory calls this to compile and install the extension
//  4. Clean() - Optional cleanup of staged inputs and build outputs
//
// # Thread Safety
//
// Builder implementations should be stateless. All ambient state (binaries,
// environment, header locations) arrives through the Toolchain argument.
type Builder interface {
	// Name returns the human-readable name of this builder.
	//
	// This name is used in error messages and logs.
	Name() string

	// CanBuild checks if this builder can handle the given extension.
	CanBuild(ext *Extension) bool

	// Build compiles the extension and installs it at the path resolved
	// from config.
	//
	// Returns:
	//   - BuildResult with Success=true and Installed set on success
	//   - BuildResult with Success=false and Error on failure
	Build(ctx context.Context, config *BuildConfig, tc *Toolchain, ext *Extension) (*BuildResult, error)

	// Clean removes staged inputs and build artifacts.
	//
	// Returns nil if cleaning is not supported or completes successfully.
	Clean(ctx context.Context, config *BuildConfig, tc *Toolchain, ext *Extension) error
}
