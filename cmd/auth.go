package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iAmNsengi/zyyp/internal/auth"
	"github.com/iAmNsengi/zyyp/internal/output"
)

var (
	flagProvider string
	flagToken    string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in through GitHub or Google",
	Long: `Open the identity provider in your browser and wait for the sign-in to
complete. The session is stored locally and refreshed automatically.

Use --token to adopt an access token obtained elsewhere.`,
	Args: cobra.NoArgs,
	RunE: withEnv(0, func(ctx context.Context, e *env, args []string) error {
		if flagToken != "" {
			sess, err := e.gotrue.Adopt(auth.Tokens{AccessToken: flagToken})
			if err != nil {
				return &output.CLIError{Summary: "Could not use that token", Detail: err.Error(), ExitCode: output.ExitAuthError}
			}
			e.printer.Success("Signed in as %s", sess.User.DisplayName())
			return nil
		}

		provider := flagProvider
		if provider == "" {
			provider = e.cfg.Auth.Provider
		}
		if provider != "github" && provider != "google" {
			return &output.CLIError{
				Summary:  fmt.Sprintf("unknown provider %q", provider),
				ExitCode: output.ExitUsageError,
			}
		}

		e.printer.Info("Opening %s in your browser...", provider)
		if err := e.auth.SignIn(ctx, provider); err != nil {
			return &output.CLIError{
				Summary:    "Sign-in failed",
				Detail:     err.Error(),
				Suggestion: "Try again, or pass --token",
				ExitCode:   output.ExitAuthError,
			}
		}
		e.printer.Success("Signed in as %s", e.auth.User().DisplayName())
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Args:  cobra.NoArgs,
	RunE: withEnv(commandTimeout, func(ctx context.Context, e *env, args []string) error {
		wasSignedIn := e.auth.IsAuthenticated()
		// Always run: it also removes credentials left by a failed restore.
		if err := e.auth.SignOut(ctx); err != nil {
			e.printer.Warning("Could not reach the identity server: %v", err)
		}
		if !wasSignedIn {
			e.printer.Info("Not signed in; cleared any stored credentials.")
			return nil
		}
		e.printer.Success("Signed out.")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	Args:  cobra.NoArgs,
	RunE: withEnv(commandTimeout, func(ctx context.Context, e *env, args []string) error {
		u := e.auth.User()
		if u == nil {
			e.printer.Info("Not signed in. Run 'zyyp login'.")
			return nil
		}
		e.printer.Print("%s %s", e.printer.Bold("User:"), u.DisplayName())
		if u.Email != "" {
			e.printer.Print("%s %s", e.printer.Bold("Email:"), u.Email)
		}
		e.printer.Print("%s %s", e.printer.Bold("ID:"), e.printer.Dim(u.ID))

		p, err := e.client.Profile(ctx)
		if err != nil {
			e.logger.Warn("loading profile", "error", err)
			return nil
		}
		e.auth.SetProfile(p)
		e.printer.Print("%s %s (member since %s)", e.printer.Bold("Profile:"), p.Username, p.CreatedAt.Format(time.DateOnly))
		return nil
	}),
}

func init() {
	loginCmd.Flags().StringVar(&flagProvider, "provider", "", "identity provider: github or google (default from config)")
	loginCmd.Flags().StringVar(&flagToken, "token", "", "use this access token instead of the browser flow")
}
