// Package cli provides the command-line interface for mtr.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mtr/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors keeps cobra from printing this itself.
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	g := &commands.Globals{}

	rootCmd := &cobra.Command{
		Use:   "mtr",
		Short: "Inspect and play MTR motion scripts",
		Long: `mtr reads MTR motion scripts: line-oriented, time-stamped command
streams split into tracks, one per actuator.

It can:
  - List the tracks of a script
  - Play a track, or several tracks merged into one timeline
  - Seek to a time and show the command held there
  - Lint scripts for structural problems
  - Check tracks against timing rules and post the report to webhooks

Configuration is read from --config (YAML or TOML). MTR_MAX_ARGS and
MTR_LOG_LEVEL override the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	g.AddFlags(rootCmd)

	rootCmd.AddCommand(commands.NewTracksCommand(g))
	rootCmd.AddCommand(commands.NewDumpCommand(g))
	rootCmd.AddCommand(commands.NewSeekCommand(g))
	rootCmd.AddCommand(commands.NewTimelineCommand(g))
	rootCmd.AddCommand(commands.NewLintCommand(g))
	rootCmd.AddCommand(commands.NewAnalyzeCommand(g))
	rootCmd.AddCommand(commands.NewValidateCommand(g))
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
