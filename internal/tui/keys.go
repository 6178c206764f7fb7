package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/filter"
	"github.com/iAmNsengi/zyyp/internal/interaction"
)

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeTags:
		return a.handleTagKey(msg)
	case modeHelp:
		switch msg.String() {
		case "?", "esc", "q":
			a.mode = modeNormal
		}
		return a, nil
	}

	cur := a.cursorRef()
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusPreview {
			a.previewScroll++
			return a, nil
		}
		if *cur < len(a.articles())-1 {
			*cur++
			a.previewScroll = 0
		}
		if a.view == viewFeed {
			return a, a.nearCmd(a.cursor)
		}
		return a, nil
	case "k", "up":
		if a.focus == focusPreview {
			if a.previewScroll > 0 {
				a.previewScroll--
			}
			return a, nil
		}
		if *cur > 0 {
			*cur--
			a.previewScroll = 0
		}
		return a, nil
	case "G", "end":
		if n := len(a.articles()); n > 0 {
			*cur = n - 1
			a.previewScroll = 0
		}
		if a.view == viewFeed {
			return a, a.nearCmd(a.cursor)
		}
		return a, nil
	case "g", "home":
		*cur = 0
		a.previewScroll = 0
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o", "enter":
		if art, ok := a.selected(); ok {
			return a, a.openCmd(art)
		}
		return a, nil
	case "u":
		return a, a.vote(api.VoteUp)
	case "d":
		return a, a.vote(api.VoteDown)
	case "b":
		return a, a.toggleBookmark()
	case "B":
		return a, a.toggleBookmarksView()
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	if a.view == viewBookmarks {
		if msg.String() == "esc" {
			a.view = viewFeed
		}
		return a, nil
	}

	// Feed-only keys
	switch msg.String() {
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "t":
		a.mode = modeTags
		a.tagBar.focused = true
		return a, nil
	case "s":
		a.filters.SetSort(a.filters.Sort().Next())
		return a, a.filtersChanged()
	case "c":
		if !a.filters.Active() && a.filters.Sort() == filter.SortNewest {
			return a, nil
		}
		a.filters.Clear()
		a.searchInput.SetValue("")
		return a, a.filtersChanged()
	case "r":
		a.engine.Reset()
		a.cards.Reset()
		a.cursor = 0
		return a, tea.Batch(a.nearCmd(0), a.loadTrendingCmd())
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		if a.filters.Search() == "" {
			return a, nil
		}
		a.filters.SetSearch("")
		return a, a.filtersChanged()
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		before := a.filters.Key()
		a.filters.SetSearch(a.searchInput.Value())
		if a.filters.Key() == before {
			return a, nil
		}
		return a, a.filtersChanged()
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) handleTagKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "t":
		a.mode = modeNormal
		a.tagBar.focused = false
		return a, nil
	case "left", "h":
		a.tagBar.left()
		return a, nil
	case "right", "l":
		a.tagBar.right()
		return a, nil
	case " ", "enter":
		if slug, ok := a.tagBar.current(); ok {
			a.filters.ToggleTag(slug)
			return a, a.filtersChanged()
		}
		return a, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if slug, ok := a.tagBar.at(int(msg.String()[0] - '0')); ok {
			a.filters.ToggleTag(slug)
			return a, a.filtersChanged()
		}
		return a, nil
	case "c":
		if len(a.filters.Tags()) == 0 {
			return a, nil
		}
		for _, slug := range a.filters.Tags() {
			a.filters.ToggleTag(slug)
		}
		return a, a.filtersChanged()
	}
	return a, nil
}

func (a *App) vote(dir api.Vote) tea.Cmd {
	art, ok := a.selected()
	if !ok {
		return nil
	}
	card := a.cards.Card(art)
	action, err := card.PlanVote(a.viewer, dir)
	if err != nil {
		a.actionRefused(err, "vote")
		return nil
	}
	a.flash.Start(art.ID)
	return tea.Batch(voteCmd(a.backend, card, action), flashCmd())
}

func (a *App) toggleBookmark() tea.Cmd {
	art, ok := a.selected()
	if !ok {
		return nil
	}
	card := a.cards.Card(art)
	action, err := card.PlanBookmark(a.viewer)
	if err != nil {
		a.actionRefused(err, "bookmark")
		return nil
	}
	a.flash.Start(art.ID)
	return tea.Batch(bookmarkCmd(a.backend, card, action), flashCmd())
}

func (a *App) actionRefused(err error, what string) {
	if errors.Is(err, interaction.ErrUnauthenticated) {
		a.notice = "Sign in to " + what + " (zyyp login)"
		return
	}
	if errors.Is(err, interaction.ErrInFlight) {
		a.notice = "Still saving the last " + what
		return
	}
	a.err = err
}

func (a *App) toggleBookmarksView() tea.Cmd {
	if a.view == viewBookmarks {
		a.view = viewFeed
		return nil
	}
	if !a.isAuthenticated() {
		a.notice = "Sign in to see bookmarks (zyyp login)"
		return nil
	}
	a.view = viewBookmarks
	a.previewScroll = 0
	a.bookmarksLoading = true
	return a.loadBookmarksCmd()
}
