package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	debug      bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "strategist",
		Short: "Strategist - score integration strategies against weighted criteria",
		Long: `Strategist compares candidate integration strategies for a pair of systems.

Each strategy is scored on every criterion, scores are min-max normalised per
criterion (respecting whether higher or lower is better), and the weighted sum
ranks the strategies. Results can be exported as CSV, kept in a history store
and published as events.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newEvaluateCommand(opts))
	cmd.AddCommand(newWizardCommand(opts))
	cmd.AddCommand(newHistoryCommand(opts))

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
