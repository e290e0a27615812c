package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kaiano/vdjhist/pkg/config"
	"github.com/kaiano/vdjhist/pkg/importer"
	"github.com/kaiano/vdjhist/pkg/output"
)

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	Output   string
	Date     string
	Timezone string
	Verbose  bool
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <history-file>",
		Short: "Parse a single history file without touching the ledger",
		Long: `Parse one .m3u history export and print the reconstructed timeline.

Nothing is recorded: every event in the file is reported as new. Useful for
inspecting a file before importing it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "File date (YYYY-MM-DD); defaults to the date in the file name")
	cmd.Flags().StringVar(&opts.Timezone, "timezone", config.DefaultTimezone, "IANA time zone for timestamps")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show per-line warnings and durations")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	path := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", opts.Timezone, err)
	}

	imp := &importer.Importer{
		Location: loc,
		Date:     opts.Date,
	}

	result, err := imp.Run(ctx, []string{path})
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	report := output.NewReport(result, "")

	formatter, err := createFormatter(opts.Output, output.FormatOptions{Verbose: opts.Verbose})
	if err != nil {
		return err
	}

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	return nil
}
