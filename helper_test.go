package pyext

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Environment knobs read by the fake bazel and python3 in TestHelperProcess.
const (
	envWantHelper      = "GO_WANT_HELPER_PROCESS"
	envBazelVersion    = "FAKE_BAZEL_VERSION"
	envBazelVersionRC  = "FAKE_BAZEL_VERSION_EXIT"
	envBazelBuildRC    = "FAKE_BAZEL_BUILD_EXIT"
	envBazelProduce    = "FAKE_BAZEL_PRODUCE"
	envBazelRecord     = "FAKE_BAZEL_RECORD"
	envIncludePy       = "FAKE_INCLUDEPY"
	envNumpyInclude    = "FAKE_NUMPY_INCLUDE"
	envExtSuffix       = "FAKE_EXT_SUFFIX"
	fakeBuildErrorLine = "ERROR: compiling extension.cc failed"
)

// useFakeCommands routes every lookup and subprocess through the test
// binary until the test ends.
func useFakeCommands(t *testing.T) {
	t.Helper()

	origLookPath := execLookPath
	origCmdCtx := execCommandContext
	t.Cleanup(func() {
		execLookPath = origLookPath
		execCommandContext = origCmdCtx
	})

	execLookPath = func(name string) (string, error) { return name, nil }
	execCommandContext = helperCommand
}

func helperCommand(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmdArgs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cmdArgs...) // #nosec G204 - helper process for testing
	cmd.Env = append(os.Environ(), envWantHelper+"=1")
	return cmd
}

// fakeToolchain returns a Toolchain whose environment enables the helper
// process, plus any extra KEY=VALUE settings.
func fakeToolchain(extra ...string) *Toolchain {
	env := append(os.Environ(), envWantHelper+"=1")
	env = append(env, extra...)
	return &Toolchain{
		Bazel:    bazelCommand,
		Environ:  env,
		Includes: &PythonIncludes{Python: pythonCommand, Environ: env},
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv(envWantHelper) != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) == 0 {
		os.Exit(2)
	}

	os.Exit(fakeMain(filepath.Base(args[0]), args[1:]))
}

func fakeMain(name string, args []string) int {
	if strings.HasPrefix(name, "python") {
		return fakePython(args)
	}
	return fakeBazel(args)
}

func fakePython(args []string) int {
	if len(args) != 2 || args[0] != "-c" {
		return 2
	}

	var key string
	switch script := args[1]; {
	case strings.Contains(script, "INCLUDEPY"):
		key = envIncludePy
	case strings.Contains(script, "numpy"):
		key = envNumpyInclude
	case strings.Contains(script, "EXT_SUFFIX"):
		key = envExtSuffix
	default:
		return 2
	}

	value, ok := os.LookupEnv(key)
	if !ok {
		fmt.Fprintln(os.Stderr, "ModuleNotFoundError")
		return 1
	}
	fmt.Println(value)
	return 0
}

func fakeBazel(args []string) int {
	if len(args) == 0 {
		return 2
	}

	switch args[0] {
	case "--version":
		fmt.Println(os.Getenv(envBazelVersion))
		return exitCodeFromEnv(envBazelVersionRC)
	case "build":
		cwd, _ := os.Getwd()
		record(
			"args="+strings.Join(args, " "),
			"dir="+cwd,
			"linklibs="+os.Getenv(EnvLinkLibs),
			"linkopts="+os.Getenv(EnvLinkOpts),
		)
		if code := exitCodeFromEnv(envBazelBuildRC); code != 0 {
			fmt.Println(fakeBuildErrorLine)
			return code
		}
		if os.Getenv(envBazelProduce) == "1" {
			target := args[len(args)-1]
			out := filepath.Join(cwd, "bazel-bin", target)
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return 1
			}
			if err := os.WriteFile(out, []byte("\x7fELF fake"), 0o555); err != nil {
				return 1
			}
		}
		fmt.Println("INFO: Build completed successfully")
		return 0
	case "clean":
		record("args=clean")
		return 0
	default:
		return 2
	}
}

func record(lines ...string) {
	path := os.Getenv(envBazelRecord)
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	for _, line := range lines {
		fmt.Fprintln(f, line)
	}
}

func exitCodeFromEnv(key string) int {
	code, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return 0
	}
	return code
}

// readRecord returns the KEY=VALUE lines the fake bazel recorded, or nil
// when it never ran.
func readRecord(t *testing.T, path string) map[string]string {
	t.Helper()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read record: %v", err)
	}

	rec := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		key, value, _ := strings.Cut(line, "=")
		rec[key] = value
	}
	return rec
}
