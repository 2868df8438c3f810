package main

import (
	"github.com/spf13/cobra"

	"voiceblog/internal/stage"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logFormatFlag string
	var verbose bool

	ctx := newCommandContext(&configFlag, &logFormatFlag, &verbose)

	rootCmd := &cobra.Command{
		Use:           "voiceblog",
		Short:         "Turn voice recordings into blog posts",
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

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging and echo stage output")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format override (console or json)")

	rootCmd.AddCommand(newRunCommand(ctx))
	for _, kind := range stage.All {
		rootCmd.AddCommand(newStageCommand(ctx, kind))
	}
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newTestNotifyCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
