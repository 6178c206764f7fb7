package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/interaction"
)

var emptySnapshot interaction.Snapshot

func renderPreview(article *api.Article, snap interaction.Snapshot, width, height, scroll int) string {
	if article == nil {
		return lipglossCenter("Select an article", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(article.Title)

	meta := []string{article.SourceName, article.Published().Format("Jan 2, 2006")}
	if article.Author != nil && *article.Author != "" {
		meta = append(meta, "by "+*article.Author)
	}
	if article.ReadingTimeMinutes > 0 {
		meta = append(meta, fmt.Sprintf("%d min read", article.ReadingTimeMinutes))
	}
	source := previewSourceStyle.Render(strings.Join(meta, " · "))

	var chips []string
	for _, t := range article.DisplayTags() {
		chips = append(chips, previewTagStyle.Render(t.Name))
	}
	if extra := len(article.Tags) - len(article.DisplayTags()); extra > 0 {
		chips = append(chips, itemTimeStyle.Render(fmt.Sprintf("+%d", extra)))
	}
	tags := strings.Join(chips, " ")

	score := renderCounts(snap, false) + itemTimeStyle.Render(fmt.Sprintf("  net %+d", snap.Net()))

	desc := stripHTML(article.Summary())
	if desc == "" {
		desc = "(No description available)"
	}
	body := previewBodyStyle.Width(contentWidth).Render(wrapText(desc, contentWidth))
	link := previewLinkStyle.Width(contentWidth).Render("Read more: " + article.URL)

	content := lipgloss.JoinVertical(lipgloss.Left, title, source, tags, score, "", body, "", link)

	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	// Pad to fill height
	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}
