package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaiano/vdjhist/pkg/config"
	"github.com/kaiano/vdjhist/pkg/importer"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a vdjhist configuration file without importing anything.

Checks:
  - YAML syntax
  - Required fields
  - Time zone validity
  - History source file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  History sources: %d pattern(s)\n", len(cfg.HistorySources))
	fmt.Fprintf(w, "  Timezone:        %s\n", cfg.Timezone)
	fmt.Fprintf(w, "  Ledger:          %s\n", cfg.Ledger)

	// Check if history sources exist (warnings only)
	files, err := importer.ExpandSources(cfg.HistorySources)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding history source patterns: %v\n", err)
	} else if len(files) == 0 {
		fmt.Fprintf(w, "\nWarning: No files match history source patterns\n")
	} else {
		fmt.Fprintf(w, "\nHistory files matched: %d\n", len(files))
		for _, f := range files {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	return nil
}
