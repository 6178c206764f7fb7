package tui

import (
	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/feed"
	"github.com/iAmNsengi/zyyp/internal/interaction"
)

type pageLoadedMsg struct {
	req  feed.Request
	page *api.Page
	err  error
}

type tagsLoadedMsg struct {
	tags []api.Tag
	err  error
}

type trendingLoadedMsg struct {
	articles []api.Article
	err      error
}

type bookmarksLoadedMsg struct {
	articles []api.Article
	err      error
}

type voteDoneMsg struct {
	card   *interaction.Card
	action interaction.VoteAction
	result *api.VoteResult
	err    error
}

type bookmarkDoneMsg struct {
	card   *interaction.Card
	action interaction.BookmarkAction
	err    error
}

type openedMsg struct {
	err error
}

// flashDoneMsg triggers a redraw once a highlight has expired.
type flashDoneMsg struct{}
