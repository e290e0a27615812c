package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kaiano/vdjhist/pkg/config"
	"github.com/kaiano/vdjhist/pkg/ledger"
	"github.com/kaiano/vdjhist/pkg/m3u"
)

// DefaultRecentHours is the default recent-history window.
const DefaultRecentHours = 3

// RecentOptions holds command-line options for the recent command.
type RecentOptions struct {
	Hours int
}

// NewRecentCommand creates the recent command.
func NewRecentCommand() *cobra.Command {
	opts := &RecentOptions{}

	cmd := &cobra.Command{
		Use:   "recent <config-file>",
		Short: "List plays recorded within the recent-history window",
		Long: `List plays from the ledger whose play time falls within the last N hours,
newest first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecent(cmd, args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Hours, "hours", DefaultRecentHours, "Size of the recent-history window in hours")

	return cmd
}

func runRecent(cmd *cobra.Command, args []string, opts *RecentOptions) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := ledger.Open(cfg.Ledger)
	if err != nil {
		return err
	}
	defer store.Close()

	since := time.Now().Add(-time.Duration(opts.Hours) * time.Hour)
	plays, err := store.Recent(ctx, since)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(plays) == 0 {
		fmt.Fprintf(w, "No recent history found (last %dh)\n", opts.Hours)
		return nil
	}

	for _, p := range plays {
		line := p.PlayedAt.In(cfg.Location()).Format(m3u.KeyTimeLayout) + "  " + p.Title
		if p.Artist != "" {
			line += " - " + p.Artist
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\n%d play(s) in the last %dh\n", len(plays), opts.Hours)

	return nil
}
