package pyext

import (
	"fmt"
	"strings"
)

// BuildError creates a standardized build error with output context.
//
// This helper formats build errors consistently, including the build
// output for debugging.
//
// # Format
//
// With error and output:
//
//	Bazel build failed: external build failed: target extension.so exited with status 1
//
//	Build output:
//	ERROR: /src/native/BUILD:3:10: Compiling extension.cc failed
//
// With error but no output:
//
//	Bazel build failed: exit status 1
//
// With output but no error:
//
//	Bazel build failed
//
//	Build output:
//	... output lines ...
func BuildError(builder string, output []string, err error) error {
	outputStr := strings.TrimSpace(strings.Join(output, "\n"))

	var prefix string
	if err != nil {
		prefix = fmt.Sprintf("%s build failed: %v", builder, err)
	} else {
		prefix = fmt.Sprintf("%s build failed", builder)
	}

	if outputStr != "" {
		return fmt.Errorf("%s\n\nBuild output:\n%s", prefix, outputStr)
	}

	return fmt.Errorf("%s", prefix)
}

// splitOutput turns captured process output into lines, dropping the
// trailing empty line left by a final newline.
func splitOutput(output []byte) []string {
	s := strings.TrimRight(string(output), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
