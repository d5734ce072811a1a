package cli

import (
	"context"
	"fmt"
	"io"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	pyext "github.com/contriboss/python-extension-go"
)

var (
	version = "dev" // semantic version
	commit  string  // git commit SHA
	date    string  // build timestamp
)

// SetVersion sets the version information displayed by --version. The
// pybazel main package passes its ldflags-stamped values here.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// options holds the persistent flags shared by every command.
type options struct {
	configPath string
	verbose    bool
	bazel      string
	python     string
}

// loadProject reads the project config and applies toolchain overrides
// from the command line.
func (o *options) loadProject() (*pyext.ProjectConfig, error) {
	project, err := pyext.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.bazel != "" {
		project.Bazel = o.bazel
	}
	if o.python != "" {
		project.Python = o.python
	}
	return project, nil
}

// Execute runs the pybazel CLI with the given context and arguments
// (without the program name).
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := NewRootCommand(stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. Logs go to logOut.
func NewRootCommand(logOut io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "pybazel",
		Short:        "Build Python native extensions with Bazel",
		Long:         `pybazel builds the Bazel targets listed under [tool.pybazel] in pyproject.toml and installs the shared objects where the Python packaging workflow expects them.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, newLogger(logOut, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("pybazel %s\ncommit: %s\nbuilt: %s\n", version, commit, date))

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVarP(&opts.configPath, "config", "c", "pyproject.toml", "path to pyproject.toml")
	flags.StringVar(&opts.bazel, "bazel", "", "bazel executable (overrides config)")
	flags.StringVar(&opts.python, "python", "", "python interpreter used to locate headers (overrides config)")

	root.AddCommand(newBuildCmd(opts))
	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newCleanCmd(opts))

	return root
}
