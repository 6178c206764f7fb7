package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/filter"
)

// tagBar renders the tag chips. Selection lives in filter.State; the bar
// only tracks the cursor used in tag mode.
type tagBar struct {
	tags    []api.Tag
	cursor  int
	focused bool
}

func (t *tagBar) setTags(tags []api.Tag) {
	t.tags = tags
	if t.cursor >= len(tags) {
		t.cursor = max(0, len(tags)-1)
	}
}

func (t *tagBar) left() {
	if t.cursor > 0 {
		t.cursor--
	}
}

func (t *tagBar) right() {
	if t.cursor < len(t.tags)-1 {
		t.cursor++
	}
}

// current returns the slug under the cursor.
func (t *tagBar) current() (string, bool) {
	if t.cursor >= len(t.tags) {
		return "", false
	}
	return t.tags[t.cursor].Slug, true
}

// at returns the slug of the 1-based chip n.
func (t *tagBar) at(n int) (string, bool) {
	if n < 1 || n > len(t.tags) {
		return "", false
	}
	return t.tags[n-1].Slug, true
}

func (t *tagBar) render(width int, filters *filter.State) string {
	sep := tabSeparatorStyle.Render(" · ")
	var parts []string

	if len(filters.Tags()) == 0 {
		parts = append(parts, tabActiveStyle.Render("All"))
	} else {
		parts = append(parts, tabInactiveStyle.Render("All"))
	}

	for i, tag := range t.tags {
		style := tabInactiveStyle
		if filters.Selected(tag.Slug) {
			style = tabActiveStyle
		}
		label := tag.Name
		if t.focused {
			if i < 9 {
				label = fmt.Sprintf("%d %s", i+1, label)
			}
			if i == t.cursor {
				label = "[" + label + "]"
			}
		}
		parts = append(parts, style.Render(label))
	}

	// Stop adding chips once the row would overflow
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorTabBg).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
