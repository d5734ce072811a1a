package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	pyext "github.com/contriboss/python-extension-go"
)

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the Bazel toolchain and header locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			project, err := opts.loadProject()
			if err != nil {
				return err
			}
			tc := project.Toolchain()

			version, err := pyext.NewBazelBuilder().ValidateToolchain(ctx, tc)
			if err != nil {
				return err
			}
			logger.Debug("toolchain ok", "bazel", tc.Bazel)

			pythonInc, err := tc.Includes.PythonInclude(ctx)
			if err != nil {
				return err
			}
			numpyInc, err := tc.Includes.NumpyInclude(ctx)
			if err != nil {
				return err
			}
			suffix, err := tc.Includes.ExtSuffix(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bazel:      %s\n", version)
			fmt.Fprintf(out, "python:     %s\n", pythonInc)
			fmt.Fprintf(out, "numpy:      %s\n", numpyInc)
			fmt.Fprintf(out, "ext-suffix: %s\n", suffix)
			return nil
		},
	}
}
