package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type statusInfo struct {
	loaded    int
	total     int
	filters   string
	sort      string
	user      string
	loading   bool
	bookmarks bool
	searching bool
	tagging   bool
	endOfFeed bool
}

func renderStatusBar(s statusInfo, width int) string {
	var left string
	if s.bookmarks {
		left = fmt.Sprintf("%d bookmarks", s.loaded)
	} else {
		left = fmt.Sprintf("%d/%d articles · %s", s.loaded, s.total, s.sort)
		if s.filters != "" {
			left += " · " + s.filters
		}
		if s.endOfFeed && s.loaded > 0 {
			left += " · end"
		}
	}
	if s.loading {
		left += " (loading...)"
	}
	if s.user != "" {
		left += " · " + s.user
	} else {
		left += " · signed out"
	}

	right := "/ search  t tags  s sort  u/d vote  b bookmark  B saved  ? help "
	switch {
	case s.searching:
		right = "esc cancel  enter search "
	case s.tagging:
		right = "←/→ move  space toggle  1-9 pick  c clear  esc done "
	case s.bookmarks:
		right = "u/d vote  b bookmark  o open  B/esc feed  q quit "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		right = ""
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return statusBarStyle.Width(width).Render(bar)
}

func filterLabel(tags []string, search string) string {
	var parts []string
	if len(tags) > 0 {
		parts = append(parts, "#"+strings.Join(tags, " #"))
	}
	if search != "" {
		parts = append(parts, fmt.Sprintf("%q", search))
	}
	return strings.Join(parts, " ")
}
