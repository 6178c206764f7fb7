package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iAmNsengi/zyyp/internal/output"
	"github.com/iAmNsengi/zyyp/internal/update"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig string
	flagColor  string
	flagTags   []string
	flagSearch string
	flagSort   string
)

var rootCmd = &cobra.Command{
	Use:           "zyyp",
	Short:         "Terminal client for the zyyp tech news feed",
	Long:          "zyyp browses curated tech articles from the terminal: filter by tag, search, vote, bookmark and read.",
	RunE:          withEnv(0, runTUI),
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "", "color output: auto, always, never")

	rootCmd.Flags().StringSliceVar(&flagTags, "tag", nil, "start with these tag slugs selected")
	rootCmd.Flags().StringVar(&flagSearch, "search", "", "start with a search query")
	rootCmd.Flags().StringVar(&flagSort, "sort", "newest", "initial sort: newest, popular, trending")

	versionCmd.Flags().BoolVar(&flagCheckUpdate, "check", false, "check for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(articlesCmd, trendingCmd, tagsCmd, voteCmd)
	rootCmd.AddCommand(bookmarksCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(historyCmd, pruneCmd, statsCmd)
}

var flagCheckUpdate bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "zyyp %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheckUpdate {
			return nil
		}
		res, err := update.New().Check(cmd.Context(), version)
		if err != nil {
			return err
		}
		if res == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "You are on the latest release.")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "zyyp %s is available: %s\n", res.LatestVersion, res.URL)
		return nil
	},
}

// Execute runs the root command and exits with a code matching the failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	ce := output.Classify(err)
	output.NewPrinter(output.ColorAuto).FormatError(ce)
	os.Exit(ce.ExitCode)
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
