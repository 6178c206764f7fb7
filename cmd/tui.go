package cmd

import (
	"context"
	"fmt"

	"github.com/iAmNsengi/zyyp/internal/filter"
	"github.com/iAmNsengi/zyyp/internal/output"
	"github.com/iAmNsengi/zyyp/internal/tui"
)

func runTUI(ctx context.Context, e *env, args []string) error {
	filters, err := initialFilters(flagTags, flagSearch, flagSort)
	if err != nil {
		return err
	}

	if last, err := e.db.GetLastOpened(); err == nil && !last.IsZero() {
		e.logger.Info("starting tui", "last_opened", last)
	}
	if err := e.db.SetLastOpened(); err != nil {
		e.logger.Warn("recording launch time", "error", err)
	}

	return tui.Run(tui.RunOpts{
		Backend:       e.client,
		Reads:         e.reads,
		Viewer:        e.auth,
		History:       e.db,
		Open:          e.browser.Open,
		Filters:       filters,
		PageSize:      e.cfg.GetPageSize(),
		TrendingLimit: e.cfg.GetTrendingLimit(),
		Logger:        e.logger,
	})
}

func initialFilters(tags []string, search, sort string) (*filter.State, error) {
	s := filter.New()
	for _, slug := range tags {
		if !s.Selected(slug) {
			s.ToggleTag(slug)
		}
	}
	s.SetSearch(search)
	if sort != "" {
		parsed, err := filter.ParseSort(sort)
		if err != nil {
			return nil, &output.CLIError{Summary: fmt.Sprintf("invalid --sort: %v", err), ExitCode: output.ExitUsageError}
		}
		s.SetSort(parsed)
	}
	return s, nil
}
