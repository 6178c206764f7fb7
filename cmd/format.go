package cmd

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/output"
)

const titleWidth = 60

func writeArticles(p *output.Printer, articles []api.Article) error {
	if len(articles) == 0 {
		p.Info("No articles.")
		return nil
	}
	t := output.NewTable(p.Out(), "id", "title", "source", "tags", "votes", "published")
	for _, a := range articles {
		votes := fmt.Sprintf("%+d", a.Upvotes-a.Downvotes)
		if a.UserVote != api.VoteNone {
			votes += " " + p.Vote(a.UserVote)
		}
		title := truncate(a.Title, titleWidth)
		if a.IsBookmarked {
			title = "* " + title
		}
		t.AddRow(
			a.ID.String(),
			title,
			a.SourceName,
			tagSlugs(a.DisplayTags()),
			votes,
			a.Published().Local().Format(time.DateOnly),
		)
	}
	return t.Render()
}

func tagSlugs(tags []api.Tag) string {
	slugs := make([]string, len(tags))
	for i, tag := range tags {
		slugs[i] = tag.Slug
	}
	return strings.Join(slugs, ",")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func parseArticleID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, &output.CLIError{
			Summary:  fmt.Sprintf("%q is not an article id", s),
			Detail:   err.Error(),
			ExitCode: output.ExitUsageError,
		}
	}
	return id, nil
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}
