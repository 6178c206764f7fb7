package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/feed"
	"github.com/iAmNsengi/zyyp/internal/filter"
	"github.com/iAmNsengi/zyyp/internal/interaction"
	"github.com/iAmNsengi/zyyp/internal/output"
)

var (
	flagArticleTags   []string
	flagArticleSearch string
	flagArticleSort   string
	flagArticlePage   int
	flagTrendingLimit int
	flagPopularTags   bool
)

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "List articles from the feed",
	Args:  cobra.NoArgs,
	RunE: withEnv(commandTimeout, func(ctx context.Context, e *env, args []string) error {
		if flagArticlePage < 1 {
			return &output.CLIError{Summary: "--page must be 1 or more", ExitCode: output.ExitUsageError}
		}
		filters, err := initialFilters(flagArticleTags, flagArticleSearch, flagArticleSort)
		if err != nil {
			return err
		}

		req := feed.Request{Key: filters.Key(), Page: flagArticlePage}
		page, err := e.client.ListArticles(ctx, req.Query(e.cfg.GetPageSize()))
		if err != nil {
			return fmt.Errorf("listing articles: %w", err)
		}

		if err := writeArticles(e.printer, page.Articles); err != nil {
			return err
		}
		more := ""
		if page.HasMore {
			more = fmt.Sprintf(", next: --page %d", page.Page+1)
		}
		e.printer.Print("%s", e.printer.Dim(fmt.Sprintf("\npage %d, %d article(s) total%s", page.Page, page.TotalCount, more)))
		return nil
	}),
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show trending articles",
	Args:  cobra.NoArgs,
	RunE: withEnv(commandTimeout, func(ctx context.Context, e *env, args []string) error {
		limit := flagTrendingLimit
		if limit <= 0 {
			limit = e.cfg.GetTrendingLimit()
		}
		articles, err := e.reads.Trending(ctx, limit)
		if err != nil {
			return fmt.Errorf("loading trending: %w", err)
		}
		return writeArticles(e.printer, articles)
	}),
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List tags",
	Args:  cobra.NoArgs,
	RunE: withEnv(commandTimeout, func(ctx context.Context, e *env, args []string) error {
		var (
			tags []api.Tag
			err  error
		)
		if flagPopularTags {
			tags, err = e.reads.PopularTags(ctx)
		} else {
			tags, err = e.reads.Tags(ctx)
		}
		if err != nil {
			return fmt.Errorf("loading tags: %w", err)
		}
		if len(tags) == 0 {
			e.printer.Info("No tags.")
			return nil
		}

		t := output.NewTable(e.printer.Out(), "slug", "name", "articles")
		for _, tag := range tags {
			count := ""
			if tag.ArticleCount != nil {
				count = fmt.Sprint(*tag.ArticleCount)
			}
			t.AddRow(tag.Slug, tag.Name, count)
		}
		return t.Render()
	}),
}

var voteCmd = &cobra.Command{
	Use:   "vote <article-id> up|down|none",
	Short: "Vote on an article",
	Long: `Cast, replace or remove your vote on an article.

Voting the direction you already hold removes the vote, the same as pressing
the key twice in the TUI. "none" removes whatever vote you hold.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"up", "down", "none"},
	RunE: withEnv(commandTimeout, func(ctx context.Context, e *env, args []string) error {
		id, err := parseArticleID(args[0])
		if err != nil {
			return err
		}
		dir, err := api.ParseVote(args[1])
		if err != nil {
			return &output.CLIError{Summary: err.Error(), ExitCode: output.ExitUsageError}
		}
		if err := e.requireAuth(); err != nil {
			return err
		}

		article, err := e.client.GetArticle(ctx, id)
		if err != nil {
			return fmt.Errorf("loading article: %w", err)
		}
		card := interaction.NewCard(*article)
		current := card.Snapshot().UserVote

		dir, ok := planDirection(dir, current)
		if !ok {
			e.printer.Info("No vote to remove.")
			return nil
		}

		if err := card.CastVote(ctx, e.auth, e.client, dir); err != nil {
			return fmt.Errorf("voting: %w", err)
		}
		e.reads.InvalidateTrending()
		snap := card.Snapshot()
		e.printer.Success("%s  %+d (%d up, %d down) %s", truncate(article.Title, titleWidth), snap.Net(), snap.Upvotes, snap.Downvotes, e.printer.Vote(snap.UserVote))
		return nil
	}),
}

// planDirection maps the requested vote onto the card's toggle: "none"
// replays the held direction, which removes it. ok is false when there is
// nothing to remove.
func planDirection(requested, current api.Vote) (api.Vote, bool) {
	if requested != api.VoteNone {
		return requested, true
	}
	if current == api.VoteNone {
		return api.VoteNone, false
	}
	return current, true
}

func init() {
	articlesCmd.Flags().StringSliceVar(&flagArticleTags, "tag", nil, "filter by tag slug (repeatable)")
	articlesCmd.Flags().StringVar(&flagArticleSearch, "search", "", "full-text search")
	articlesCmd.Flags().StringVar(&flagArticleSort, "sort", string(filter.SortNewest), "sort: newest, popular, trending")
	articlesCmd.Flags().IntVar(&flagArticlePage, "page", 1, "page number")

	trendingCmd.Flags().IntVar(&flagTrendingLimit, "limit", 0, "number of articles (default from config)")

	tagsCmd.Flags().BoolVar(&flagPopularTags, "popular", false, "only the most used tags")
}
