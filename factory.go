package pyext

import (
	"context"
	"errors"
	"fmt"
)

// BuilderFactory manages the registration and selection of extension builders.
//
// The factory maintains a registry of Builder implementations and provides
// methods to:
//   - Register new builders
//   - Find the appropriate builder for an extension
//   - Build a batch of extensions behind a single toolchain check
//
// # Usage
//
//	factory := pyext.NewBuilderFactory()
//	results, err := factory.BuildAllExtensions(ctx, config, pyext.DefaultToolchain(), exts)
//
// # Thread Safety
//
// BuilderFactory is NOT thread-safe for registration.
// Register all builders before use.
type BuilderFactory struct {
	builders []Builder
}

// NewBuilderFactory creates a factory with the Bazel builder registered.
func NewBuilderFactory() *BuilderFactory {
	factory := &BuilderFactory{}
	factory.Register(NewBazelBuilder())
	return factory
}

// Register adds a new builder to the factory.
//
// Builders are checked in the order they are registered.
func (f *BuilderFactory) Register(builder Builder) {
	f.builders = append(f.builders, builder)
}

// BuilderFor returns the first registered builder that accepts ext.
func (f *BuilderFactory) BuilderFor(ext *Extension) (Builder, error) {
	for _, builder := range f.builders {
		if builder.CanBuild(ext) {
			return builder, nil
		}
	}

	return nil, fmt.Errorf("%w for extension %s (target %s)", ErrNoBuilder, ext.Name(), ext.Target())
}

// ListBuilders returns a copy of all registered builders.
func (f *BuilderFactory) ListBuilders() []Builder {
	return append([]Builder{}, f.builders...)
}

// CheckToolchain selects a builder for every extension and runs each
// distinct builder's tool check once. It returns the builders in the same
// order as exts.
func (f *BuilderFactory) CheckToolchain(ctx context.Context, tc *Toolchain, exts []*Extension) ([]Builder, error) {
	selected := make([]Builder, 0, len(exts))
	checked := make(map[Builder]struct{})

	for _, ext := range exts {
		builder, err := f.BuilderFor(ext)
		if err != nil {
			return nil, err
		}
		selected = append(selected, builder)

		if _, ok := checked[builder]; ok {
			continue
		}
		checked[builder] = struct{}{}

		if checker, ok := builder.(ToolChecker); ok {
			if err := checker.CheckTools(ctx, tc); err != nil {
				return nil, fmt.Errorf("%s toolchain: %w", builder.Name(), err)
			}
		}
	}

	return selected, nil
}

// BuildAllExtensions builds all extensions in sequence.
//
// # Process
//
//  1. Select a builder for every extension and check each builder's tools
//     once; any failure here aborts the batch before any build side effect
//  2. For each extension, check for context cancellation, then build it
//  3. Stop at the first failed extension
//
// # Return Values
//
// Returns one BuildResult per extension processed and the first error.
// A failed toolchain check returns no results.
func (f *BuilderFactory) BuildAllExtensions(ctx context.Context, config *BuildConfig, tc *Toolchain, exts []*Extension) ([]*BuildResult, error) {
	if len(exts) == 0 {
		return nil, nil
	}
	if config == nil {
		config = &BuildConfig{}
	}

	builders, err := f.CheckToolchain(ctx, tc, exts)
	if err != nil {
		return nil, err
	}

	var results []*BuildResult

	for i, ext := range exts {
		if ctxErr := ctx.Err(); ctxErr != nil {
			results = append(results, &BuildResult{
				Extension: ext,
				Success:   false,
				Error:     ctxErr,
			})
			return results, ctxErr
		}

		result, err := builders[i].Build(ctx, config, tc, ext)
		if result == nil {
			result = &BuildResult{Extension: ext, Error: err}
		}
		results = append(results, result)

		if err != nil {
			err = fmt.Errorf("build %s: %w", ext.Name(), err)
			// A build killed by cancellation should still report the cancellation.
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = errors.Join(ctxErr, err)
			}
			return results, err
		}
	}

	return results, nil
}

// CleanAllExtensions runs Clean for every extension, stopping at the first
// error.
func (f *BuilderFactory) CleanAllExtensions(ctx context.Context, config *BuildConfig, tc *Toolchain, exts []*Extension) error {
	if config == nil {
		config = &BuildConfig{}
	}
	for _, ext := range exts {
		builder, err := f.BuilderFor(ext)
		if err != nil {
			return err
		}
		if err := builder.Clean(ctx, config, tc, ext); err != nil {
			return fmt.Errorf("clean %s: %w", ext.Name(), err)
		}
	}
	return nil
}
