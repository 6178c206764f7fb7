package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/interaction"
)

// nearCmd runs the feed's proximity trigger for index and, if it fires,
// fetches the reserved page.
func (a *App) nearCmd(index int) tea.Cmd {
	req, ok := a.engine.Near(index)
	if !ok {
		return nil
	}
	engine := a.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		page, err := engine.Fetch(ctx, req)
		return pageLoadedMsg{req: req, page: page, err: err}
	}
}

func (a *App) loadTagsCmd() tea.Cmd {
	if a.reads == nil {
		return nil
	}
	reads := a.reads
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tags, err := reads.Tags(ctx)
		return tagsLoadedMsg{tags: tags, err: err}
	}
}

func (a *App) loadTrendingCmd() tea.Cmd {
	if a.reads == nil || a.trendingLimit <= 0 {
		return nil
	}
	reads, limit := a.reads, a.trendingLimit
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		articles, err := reads.Trending(ctx, limit)
		return trendingLoadedMsg{articles: articles, err: err}
	}
}

func (a *App) loadBookmarksCmd() tea.Cmd {
	backend := a.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		page, err := backend.Bookmarks(ctx, 1, bookmarksLimit)
		if err != nil {
			return bookmarksLoadedMsg{err: err}
		}
		return bookmarksLoadedMsg{articles: page.Articles}
	}
}

func voteCmd(backend interaction.Voter, card *interaction.Card, action interaction.VoteAction) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := action.Execute(ctx, backend)
		return voteDoneMsg{card: card, action: action, result: res, err: err}
	}
}

func bookmarkCmd(backend interaction.Bookmarker, card *interaction.Card, action interaction.BookmarkAction) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return bookmarkDoneMsg{card: card, action: action, err: action.Execute(ctx, backend)}
	}
}

// openCmd opens the article and records it in the local history.
func (a *App) openCmd(article api.Article) tea.Cmd {
	open, history, logger := a.open, a.history, a.logger
	return func() tea.Msg {
		if open != nil {
			if err := open(article.URL); err != nil {
				return openedMsg{err: err}
			}
		}
		if history != nil {
			if err := history.RecordOpen(article); err != nil {
				logger.Warn("recording history", "article", article.ID, "error", err)
			}
		}
		return openedMsg{}
	}
}

func flashCmd() tea.Cmd {
	return tea.Tick(interaction.FlashDuration+10*time.Millisecond, func(time.Time) tea.Msg {
		return flashDoneMsg{}
	})
}
