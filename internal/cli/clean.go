package cli

import (
	"github.com/spf13/cobra"

	pyext "github.com/contriboss/python-extension-go"
)

func newCleanCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove staged headers and Bazel outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			project, err := opts.loadProject()
			if err != nil {
				return err
			}
			exts, err := project.BuildExtensions()
			if err != nil {
				return err
			}

			config := project.BuildConfig()
			config.Logger = loggerFromContext(ctx)

			if err := pyext.NewBuilderFactory().CleanAllExtensions(ctx, config, project.Toolchain(), exts); err != nil {
				return err
			}
			config.Logger.Infof("Cleaned %d extension(s)", len(exts))
			return nil
		},
	}
}
