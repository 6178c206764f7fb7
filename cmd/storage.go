package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iAmNsengi/zyyp/internal/cache"
	"github.com/iAmNsengi/zyyp/internal/config"
	"github.com/iAmNsengi/zyyp/internal/logging"
	"github.com/iAmNsengi/zyyp/internal/output"
)

var (
	flagPruneOlderThan string
	flagHistorySearch  string
	flagHistorySince   string
	flagHistoryLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List articles you opened, most recent first",
	Args:  cobra.NoArgs,
	RunE: withEnv(0, func(ctx context.Context, e *env, args []string) error {
		opts := cache.QueryOpts{Search: flagHistorySearch, Limit: flagHistoryLimit}
		if flagHistorySince != "" {
			d, err := config.ParseDays(flagHistorySince)
			if err != nil {
				return &output.CLIError{Summary: fmt.Sprintf("invalid --since value: %v", err), ExitCode: output.ExitUsageError}
			}
			opts.Since = time.Now().Add(-d)
		}

		entries, err := e.db.History(opts)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			e.printer.Info("No history yet.")
			return nil
		}

		t := output.NewTable(e.printer.Out(), "opened", "title", "source", "tags", "read")
		for _, h := range entries {
			t.AddRow(
				h.OpenedAt.Local().Format("2006-01-02 15:04"),
				truncate(h.Title, titleWidth),
				h.Source,
				h.Tags,
				formatMinutes(h.ReadingTime),
			)
		}
		return t.Render()
	}),
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries from the local reading history",
	Long: `Delete history entries older than the retention period and reclaim disk space.

Uses the retention value from config (default: 90d) unless overridden with --older-than.`,
	Args: cobra.NoArgs,
	RunE: withEnv(0, func(ctx context.Context, e *env, args []string) error {
		retention := e.cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := config.ParseDays(flagPruneOlderThan)
			if err != nil {
				return &output.CLIError{Summary: fmt.Sprintf("invalid --older-than value: %v", err), ExitCode: output.ExitUsageError}
			}
			retention = d
		}

		deleted, err := e.db.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			e.printer.Info("Nothing to prune.")
		} else {
			e.printer.Success("Pruned %d history entries older than %s.", deleted, formatDuration(retention))
		}
		return nil
	}),
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show local store statistics",
	Args:  cobra.NoArgs,
	RunE: withEnv(0, func(ctx context.Context, e *env, args []string) error {
		dbPath := config.DBPath()
		count, size, err := e.db.Stats(dbPath)
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		e.printer.Print("%s %s", e.printer.Bold("Store:"), dbPath)
		e.printer.Print("%s %d", e.printer.Bold("History:"), count)
		e.printer.Print("%s %s", e.printer.Bold("Size:"), formatBytes(size))
		e.printer.Print("%s %s", e.printer.Bold("Config:"), configPath())
		e.printer.Print("%s %s", e.printer.Bold("Log:"), logging.Path())
		if last, err := e.db.GetLastOpened(); err == nil && !last.IsZero() {
			e.printer.Print("%s %s", e.printer.Bold("Last session:"), last.Local().Format(time.RFC1123))
		}
		return nil
	}),
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")

	historyCmd.Flags().StringVar(&flagHistorySearch, "search", "", "match title, source or tags")
	historyCmd.Flags().StringVar(&flagHistorySince, "since", "", "only entries opened within this window (e.g., 7d, 24h)")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 50, "maximum entries")
}
