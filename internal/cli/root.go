// Package cli provides the command-line interface for vdjhist.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kaiano/vdjhist/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return 0
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vdjhist",
		Short: "Import VirtualDJ play history into a local ledger",
		Long: `vdjhist ingests VirtualDJ .m3u history exports and reconstructs a
chronologically ordered, deduplicated sequence of play events.

Each history file is associated with a calendar date (taken from its name),
relative clock times are placed on that date, midnight rollovers advance the
day, and every event is deduplicated against a persistent SQLite ledger so
re-importing the same file is a no-op.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewImportCommand())
	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewRecentCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
