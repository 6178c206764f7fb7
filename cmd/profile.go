package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/output"
	"github.com/iAmNsengi/zyyp/internal/profile"
)

var (
	flagProfileUsername  string
	flagProfileBio       string
	flagProfileInterests []string

	// set in init; the edit command reads it to tell unset flags from empty ones
	profileEditFlags *pflag.FlagSet
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your profile",
	Args:  cobra.NoArgs,
	RunE:  withEnv(commandTimeout, showProfile),
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile and reading stats",
	Args:  cobra.NoArgs,
	RunE:  withEnv(commandTimeout, showProfile),
}

var profileStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your reading stats",
	Args:  cobra.NoArgs,
	RunE: withEnv(commandTimeout, func(ctx context.Context, e *env, args []string) error {
		if err := e.requireAuth(); err != nil {
			return err
		}
		stats, err := e.client.ReadingStats(ctx)
		if err != nil {
			return fmt.Errorf("loading reading stats: %w", err)
		}
		writeStats(e.printer, stats)
		return nil
	}),
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Change username, bio or interests",
	Long: `Update profile fields. Only the flags you pass are changed.

An empty --bio clears the bio. Each --interest toggles that tag slug in your
interests.`,
	Args: cobra.NoArgs,
	RunE: withEnv(commandTimeout, func(ctx context.Context, e *env, args []string) error {
		if err := e.requireAuth(); err != nil {
			return err
		}
		current, err := e.client.Profile(ctx)
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}

		ed := profile.NewEditor(*current)
		ed.Edit()
		if profileEditFlags.Changed("username") {
			if strings.TrimSpace(flagProfileUsername) == "" {
				return &output.CLIError{Summary: "--username cannot be empty", ExitCode: output.ExitUsageError}
			}
			_ = ed.SetUsername(flagProfileUsername)
		}
		if profileEditFlags.Changed("bio") {
			_ = ed.SetBio(flagProfileBio)
		}
		for _, slug := range flagProfileInterests {
			_ = ed.ToggleInterest(slug)
		}

		u, err := ed.Update()
		if err != nil {
			return err
		}
		if emptyUpdate(u) {
			e.printer.Info("Nothing to change.")
			return nil
		}
		if err := ed.Save(ctx, e.client); err != nil {
			return err
		}
		saved := ed.Confirmed()
		e.auth.SetProfile(&saved)
		e.printer.Success("Profile updated.")
		writeProfile(e.printer, &saved)
		return nil
	}),
}

func emptyUpdate(u api.ProfileUpdate) bool {
	return u.Username == nil && u.Bio == nil && !u.ClearBio && u.Interests == nil
}

func showProfile(ctx context.Context, e *env, args []string) error {
	if err := e.requireAuth(); err != nil {
		return err
	}
	ov, err := profile.Load(ctx, e.client)
	if err != nil {
		return err
	}
	e.auth.SetProfile(ov.Profile)
	writeProfile(e.printer, ov.Profile)
	writeStats(e.printer, ov.Stats)
	return nil
}

func writeProfile(p *output.Printer, pr *api.Profile) {
	p.Header(pr.Username)
	if pr.Bio != nil && *pr.Bio != "" {
		p.Print("%s", *pr.Bio)
	}
	if len(pr.Interests) > 0 {
		p.Print("%s %s", p.Bold("Interests:"), strings.Join(pr.Interests, ", "))
	}
	p.Print("%s %s", p.Bold("Member since:"), pr.CreatedAt.Local().Format(time.DateOnly))
}

func writeStats(p *output.Printer, s *api.ReadingStats) {
	p.Header("Reading stats")
	t := output.NewTable(p.Out(), "stat", "value")
	t.AddRow("articles read", fmt.Sprint(s.TotalArticlesRead))
	t.AddRow("reading time", formatMinutes(s.TotalReadingTimeMinutes))
	t.AddRow("current streak", fmt.Sprintf("%d day(s)", s.CurrentStreakDays))
	t.AddRow("longest streak", fmt.Sprintf("%d day(s)", s.LongestStreakDays))
	t.AddRow("bookmarks", fmt.Sprint(s.TotalBookmarks))
	t.AddRow("votes", fmt.Sprint(s.TotalVotes))
	if err := t.Render(); err != nil {
		p.Error("rendering stats: %v", err)
	}
}

func init() {
	profileEditCmd.Flags().StringVar(&flagProfileUsername, "username", "", "new username")
	profileEditCmd.Flags().StringVar(&flagProfileBio, "bio", "", "new bio; empty clears it")
	profileEditCmd.Flags().StringSliceVar(&flagProfileInterests, "interest", nil, "toggle an interest tag slug (repeatable)")
	profileEditFlags = profileEditCmd.Flags()

	profileCmd.AddCommand(profileShowCmd, profileEditCmd, profileStatsCmd)
}
