package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(opts ...contextOption) *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag, opts...)

	rootCmd := &cobra.Command{
		Use:           "aaxconv",
		Short:         "Convert Audible AAX/AAXC audiobooks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Configuration file path")

	rootCmd.AddCommand(newConvertCommand(ctx))
	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
