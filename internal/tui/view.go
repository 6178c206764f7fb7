package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iAmNsengi/zyyp/internal/api"
)

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  zyyp")
	}
	if a.mode == modeHelp {
		return a.renderHelp()
	}

	header := a.renderHeader()

	var bar string
	switch {
	case a.mode == modeSearch:
		bar = a.searchInput.View()
	case a.view == viewBookmarks:
		bar = tabInactiveStyle.Width(a.width).Render("Bookmarks")
	default:
		bar = a.tagBar.render(a.width, a.filters)
	}

	trending := a.renderTrending()
	trendingHeight := 0
	if trending != "" {
		trendingHeight = 1
	}

	contentHeight := a.height - 1 - 1 - trendingHeight - 1 - 2 // header, bar, trending, status, borders
	if contentHeight < 3 {
		contentHeight = 3
	}
	listWidth := int(float64(a.width) * 0.4)
	previewWidth := a.width - listWidth

	list := a.articles()
	cursor := *a.cursorRef()

	empty := "No articles found"
	switch {
	case a.view == viewBookmarks && a.bookmarksLoading:
		empty = "Loading bookmarks..."
	case a.view == viewBookmarks:
		empty = "No bookmarks yet"
	case a.engine.Loading():
		empty = "Loading..."
	}
	listContent := renderList(list, a.cards, a.flash, cursor, contentHeight, listWidth-4, empty)

	listStyle, previewStyle := listPaneStyle, previewPaneStyle
	if a.focus == focusList {
		listStyle = listPaneActiveStyle
	} else {
		previewStyle = previewPaneActiveStyle
	}
	listPane := listStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)

	var sel *api.Article
	if art, ok := a.selected(); ok {
		sel = &art
	}
	var previewContent string
	if sel != nil {
		previewContent = renderPreview(sel, a.cards.Card(*sel).Snapshot(), previewWidth-4, contentHeight, a.previewScroll)
	} else {
		previewContent = renderPreview(nil, emptySnapshot, previewWidth-4, contentHeight, 0)
	}
	previewPane := previewStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := a.renderStatus(len(list))

	rows := []string{header, bar}
	if trending != "" {
		rows = append(rows, trending)
	}
	rows = append(rows, content, status)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) renderHeader() string {
	left := headerStyle.Render("zyyp")
	user := "not signed in"
	if a.viewer != nil && a.viewer.IsAuthenticated() {
		if u := a.viewer.User(); u != nil {
			user = "@" + u.DisplayName()
		}
	}
	right := headerUserStyle.Render(user + " ")
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + strings.Repeat(" ", gap) + right
}

func (a *App) renderTrending() string {
	if len(a.trending) == 0 || a.view != viewFeed {
		return ""
	}
	row := trendingLabelStyle.Render("Trending ")
	for i, art := range a.trending {
		item := trendingItemStyle.Render(truncateStr(art.Title, 32))
		if i > 0 {
			item = itemTimeStyle.Render(" · ") + item
		}
		if lipgloss.Width(row+item) > a.width {
			break
		}
		row += item
	}
	return row
}

func (a *App) renderStatus(loaded int) string {
	if a.err != nil {
		return statusBarStyle.Width(a.width).Render(statusErrStyle.Render(a.err.Error()))
	}
	if a.notice != "" {
		return statusBarStyle.Width(a.width).Render(a.notice)
	}

	info := statusInfo{
		loaded:    loaded,
		total:     a.engine.TotalCount(),
		filters:   filterLabel(a.filters.Tags(), a.filters.Search()),
		sort:      a.filters.Sort().Label(),
		loading:   a.engine.Loading() || a.bookmarksLoading,
		bookmarks: a.view == viewBookmarks,
		searching: a.mode == modeSearch,
		tagging:   a.mode == modeTags,
		endOfFeed: !a.engine.HasMore(),
	}
	if a.viewer != nil && a.viewer.IsAuthenticated() {
		if u := a.viewer.User(); u != nil {
			info.user = u.DisplayName()
		}
	}
	status := renderStatusBar(info, a.width)
	if info.loading {
		status = a.spinner.View() + status
	}
	return status
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("zyyp")
	dim := helpDimStyle

	help := title + dim.Render("  keyboard shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓      Move through articles\n" +
		"  g/G           First / last loaded article\n" +
		"  tab           Switch focus between list and preview\n\n" +
		dim.Render("Articles") + "\n" +
		"  o, enter      Open in browser\n" +
		"  u / d         Upvote / downvote (again to remove)\n" +
		"  b             Toggle bookmark\n" +
		"  B             Bookmarks view\n\n" +
		dim.Render("Filters") + "\n" +
		"  /             Search\n" +
		"  t             Tag mode (←/→, space, 1-9)\n" +
		"  s             Cycle sort: newest, popular, trending\n" +
		"  c             Clear filters\n" +
		"  r             Reload\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c     Quit"

	card := helpCardStyle.Render(help)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}
