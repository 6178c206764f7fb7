package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/auth"
	"github.com/iAmNsengi/zyyp/internal/browser"
	"github.com/iAmNsengi/zyyp/internal/cache"
	"github.com/iAmNsengi/zyyp/internal/config"
	"github.com/iAmNsengi/zyyp/internal/logging"
	"github.com/iAmNsengi/zyyp/internal/output"
	"github.com/iAmNsengi/zyyp/internal/querycache"
)

const commandTimeout = 30 * time.Second

// env is everything a command needs, built once per invocation.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *cache.Cache
	browser *browser.Launcher
	gotrue  *auth.GoTrue
	auth    *auth.State
	client  *api.Client
	reads   *querycache.Reads
	printer *output.Printer

	closers []func() error
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, &output.CLIError{
			Summary:    "Invalid configuration",
			Detail:     err.Error(),
			Suggestion: "Check " + configPath(),
			ExitCode:   output.ExitConfigError,
		}
	}

	colorSetting := cfg.Color
	if flagColor != "" {
		colorSetting = flagColor
	}
	mode, err := output.ParseColorMode(colorSetting)
	if err != nil {
		return nil, &output.CLIError{Summary: err.Error(), ExitCode: output.ExitUsageError}
	}

	e := &env{cfg: cfg, printer: output.NewPrinter(mode), browser: browser.New()}

	logger, closeLog, err := logging.Setup(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}
	e.logger = logger
	e.closers = append(e.closers, closeLog)

	db, err := cache.Open(config.DBPath())
	if err != nil {
		e.close()
		return nil, fmt.Errorf("opening local store: %w", err)
	}
	e.db = db
	e.closers = append(e.closers, db.Close)

	e.gotrue = auth.NewGoTrue(cfg.Auth.URL, cfg.AuthKey(), db, e.browser.Open, logger)
	e.auth = auth.NewState(e.gotrue, db, logger)
	e.auth.Initialize(ctx)

	e.client = api.New(cfg.APIURL, db,
		api.WithLogger(logger),
		api.WithUserAgent("zyyp/"+version),
	)
	e.reads = querycache.NewReads(e.client, logger)

	logger.Debug("command environment ready", "api", cfg.APIURL, "authenticated", e.auth.IsAuthenticated())
	return e, nil
}

func (e *env) close() {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i]())
	}
	if err := errors.Join(errs...); err != nil && e.logger != nil {
		e.logger.Warn("closing resources", "error", err)
	}
}

// requireAuth fails fast before any request that needs a session.
func (e *env) requireAuth() error {
	if !e.auth.IsAuthenticated() {
		return auth.ErrNotSignedIn
	}
	return nil
}

// withEnv wraps a command body with setup and cleanup. A zero timeout leaves
// the command unbounded.
func withEnv(timeout time.Duration, fn func(ctx context.Context, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		e, err := setup(ctx)
		if err != nil {
			return err
		}
		defer e.close()
		return fn(ctx, e, args)
	}
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.DefaultConfigPath()
}
