package pyext

import "context"

// runBuildSteps executes the stage -> build -> install sequence for one
// extension.
//
// # Process Flow
//
//  1. Create empty BuildResult
//  2. Call StageFunc to place build inputs
//  3. Call BuildFunc to run the external build
//  4. Call InstallFunc to copy the artifact to its destination
//  5. Return BuildResult with Success=true
//
// If any step fails, processing stops and the error is returned with
// Success=false. A failed build therefore never reaches InstallFunc.
//
// # Example
//
//	func (b *MyBuilder) Build(ctx context.Context, config *BuildConfig, tc *Toolchain, ext *Extension) (*BuildResult, error) {
//	    return runBuildSteps(ctx, ext, BuildSteps{
//	        StageFunc:   b.stage,
//	        BuildFunc:   b.compile,
//	        InstallFunc: b.install,
//	    })
//	}
func runBuildSteps(ctx context.Context, ext *Extension, steps BuildSteps) (*BuildResult, error) {
	result := &BuildResult{
		Extension: ext,
		Success:   false,
		Output:    []string{},
	}

	// Step 1: Stage inputs
	if err := steps.StageFunc(ctx, ext, result); err != nil {
		result.Error = err
		return result, err
	}

	// Step 2: Run the external build
	if err := steps.BuildFunc(ctx, ext, result); err != nil {
		result.Error = err
		return result, err
	}

	// Step 3: Install the artifact
	if err := steps.InstallFunc(ctx, ext, result); err != nil {
		result.Error = err
		return result, err
	}

	result.Success = true
	return result, nil
}
