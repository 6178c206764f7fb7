package tui

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/interaction"
)

// cardSource yields the mounted card for an article.
type cardSource interface {
	Card(a api.Article) *interaction.Card
}

type flashSource interface {
	Active(id uuid.UUID) bool
}

func renderCounts(s interaction.Snapshot, flashing bool) string {
	up := fmt.Sprintf("▲%d", s.Upvotes)
	down := fmt.Sprintf("▼%d", s.Downvotes)
	switch s.UserVote {
	case api.VoteUp:
		up = voteUpStyle.Render(up)
		down = itemTimeStyle.Render(down)
	case api.VoteDown:
		up = itemTimeStyle.Render(up)
		down = voteDownStyle.Render(down)
	default:
		up = itemTimeStyle.Render(up)
		down = itemTimeStyle.Render(down)
	}
	out := up + " " + down
	if s.Bookmarked {
		out += " " + bookmarkStyle.Render("★")
	}
	if flashing {
		out += " " + flashStyle.Render("•")
	}
	return out
}

func renderListItem(a api.Article, s interaction.Snapshot, flashing, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(a.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(a.Title, width-4))
	}

	meta := "  " + itemSourceStyle.Render(truncateStr(a.SourceName, width/2)) +
		" " + itemTimeStyle.Render("· "+relativeTime(a.Published())) +
		" " + renderCounts(s, flashing)

	return title + "\n" + meta
}

func renderList(articles []api.Article, cards cardSource, flash flashSource, cursor, height, width int, empty string) string {
	if len(articles) == 0 {
		return lipglossCenter(empty, width, height)
	}

	// Each item is 2 lines + 1 blank line = 3 lines
	itemHeight := 3
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}

	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > len(articles) {
		end = len(articles)
		start = end - visible
		if start < 0 {
			start = 0
		}
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		art := articles[i]
		snap := cards.Card(art).Snapshot()
		b.WriteString(renderListItem(art, snap, flash.Active(art.ID), i == cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}

	return b.String()
}
