package main

import (
	"github.com/spf13/cobra"

	"elatprep/internal/failures"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)
	run := &runFlags{}

	rootCmd := &cobra.Command{
		Use:   "elatprep",
		Short: "Rewrite video display names in an edX course structure export",
		Long: `elatprep reads a course structure document, replaces the display name of
every video component with the client_video_id from its XML descriptor, and
writes the result to a new file. Running elatprep without a subcommand is the
same as "elatprep run".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          usageArgs(cobra.NoArgs),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig(cmd, run)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreprocess(cmd, ctx, run)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format (console or json)")
	bindRunFlags(rootCmd, run)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return failures.Wrap(failures.ErrConfiguration, "cli", "parse flags", "", err)
	})

	rootCmd.AddCommand(newRunCommand(ctx, run))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}

// usageArgs tags argument validation failures as configuration errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return failures.Wrap(failures.ErrConfiguration, "cli", "", "", err)
		}
		return nil
	}
}
