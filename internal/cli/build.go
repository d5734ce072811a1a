package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	pyext "github.com/contriboss/python-extension-go"
)

func newBuildCmd(opts *options) *cobra.Command {
	var (
		buildLib  string
		inplace   bool
		extSuffix string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build and install every configured extension",
		Long: `Build checks that bazel 3.x is available, then for each extension stages the
interpreter and numpy headers, runs "bazel build -c opt <target>" and copies
the result into the build tree. The first failure stops the run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			project, err := opts.loadProject()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("build-lib") {
				project.BuildLib = buildLib
			}
			if flags.Changed("inplace") {
				project.Inplace = inplace
			}
			if flags.Changed("ext-suffix") {
				project.ExtSuffix = extSuffix
			}

			exts, err := project.BuildExtensions()
			if err != nil {
				return err
			}

			config := project.BuildConfig()
			config.Logger = logger
			config.Verbose = opts.verbose

			p := newProgress(logger)
			results, err := pyext.NewBuilderFactory().BuildAllExtensions(ctx, config, project.Toolchain(), exts)
			if err != nil {
				return err
			}

			for _, r := range results {
				fmt.Fprintln(cmd.OutOrStdout(), r.Installed)
			}
			p.done(fmt.Sprintf("Built %d extension(s)", len(results)))
			return nil
		},
	}

	cmd.Flags().StringVar(&buildLib, "build-lib", "", "directory for built extensions (default from config, then build/lib)")
	cmd.Flags().BoolVar(&inplace, "inplace", false, "install extensions next to the Python sources")
	cmd.Flags().StringVar(&extSuffix, "ext-suffix", "", "extension file suffix (default from the interpreter's EXT_SUFFIX)")

	return cmd
}
