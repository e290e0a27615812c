package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaiano/vdjhist/pkg/config"
	"github.com/kaiano/vdjhist/pkg/importer"
	"github.com/kaiano/vdjhist/pkg/ledger"
	"github.com/kaiano/vdjhist/pkg/output"
)

// ImportOptions holds command-line options for the import command.
type ImportOptions struct {
	Output  string
	Date    string
	DryRun  bool
	Verbose bool
	Quiet   bool
}

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import <config-file>",
		Short: "Import play history files into the ledger",
		Long: `Import the history files named by the configuration into the play ledger.

Each file's calendar date is derived from its name (YYYY-MM-DD). Events
already present in the ledger are skipped, so repeated imports of the same
files add nothing.

Exit codes:
  0 - Import completed
  2 - Configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "Override the file date (YYYY-MM-DD) for every file")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Reconstruct and report without recording to the ledger")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show per-line warnings and durations")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	return cmd
}

func runImport(cmd *cobra.Command, args []string, opts *ImportOptions) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Open the play ledger
	store, err := ledger.Open(cfg.Ledger)
	if err != nil {
		return err
	}
	defer store.Close()

	imp := &importer.Importer{
		Location: cfg.Location(),
		Ledger:   store,
		Date:     opts.Date,
		DryRun:   opts.DryRun,
	}

	result, err := imp.Run(ctx, cfg.HistorySources)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	report := output.NewReport(result, configPath)

	formatter, err := createFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	return nil
}

func createFormatter(name string, opts output.FormatOptions) (output.Formatter, error) {
	switch name {
	case "text":
		return output.NewTextFormatter(opts), nil
	case "json":
		return output.NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", name)
	}
}
