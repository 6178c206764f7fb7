package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/interaction"
	"github.com/iAmNsengi/zyyp/internal/rss"
)

const bookmarksPageSize = 50

var (
	flagBookmarksPage int
	flagExportOutput  string
)

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "List and manage bookmarks",
	Args:  cobra.NoArgs,
	RunE:  withEnv(commandTimeout, listBookmarks),
}

var bookmarksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarked articles",
	Args:  cobra.NoArgs,
	RunE:  withEnv(commandTimeout, listBookmarks),
}

var bookmarksAddCmd = &cobra.Command{
	Use:   "add <article-id>",
	Short: "Bookmark an article",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(commandTimeout, func(ctx context.Context, e *env, args []string) error {
		return setBookmark(ctx, e, args[0], true)
	}),
}

var bookmarksRemoveCmd = &cobra.Command{
	Use:     "remove <article-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a bookmark",
	Args:    cobra.ExactArgs(1),
	RunE: withEnv(commandTimeout, func(ctx context.Context, e *env, args []string) error {
		return setBookmark(ctx, e, args[0], false)
	}),
}

var bookmarksExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export bookmarks as an RSS feed",
	Long: `Write every bookmarked article as an RSS 2.0 document, to stdout or to
the file given with --output.`,
	Args: cobra.NoArgs,
	RunE: withEnv(commandTimeout, func(ctx context.Context, e *env, args []string) error {
		if err := e.requireAuth(); err != nil {
			return err
		}
		articles, err := allBookmarks(ctx, e.client)
		if err != nil {
			return err
		}

		var w io.Writer = e.printer.Out()
		if flagExportOutput != "" && flagExportOutput != "-" {
			f, err := os.Create(flagExportOutput)
			if err != nil {
				return fmt.Errorf("creating %s: %w", flagExportOutput, err)
			}
			defer f.Close()
			w = f
		}

		ch := rss.Channel{
			Title:       "zyyp bookmarks",
			Link:        e.cfg.APIURL,
			Description: fmt.Sprintf("Articles bookmarked by %s", e.auth.User().DisplayName()),
		}
		if err := rss.Export(w, ch, articles); err != nil {
			return fmt.Errorf("writing feed: %w", err)
		}
		if w != e.printer.Out() {
			e.printer.Success("Exported %d bookmark(s) to %s", len(articles), flagExportOutput)
		}
		return nil
	}),
}

func listBookmarks(ctx context.Context, e *env, args []string) error {
	if err := e.requireAuth(); err != nil {
		return err
	}
	page, err := e.client.Bookmarks(ctx, flagBookmarksPage, bookmarksPageSize)
	if err != nil {
		return fmt.Errorf("listing bookmarks: %w", err)
	}
	for i := range page.Articles {
		page.Articles[i].IsBookmarked = true
	}
	if err := writeArticles(e.printer, page.Articles); err != nil {
		return err
	}
	if page.HasMore {
		e.printer.Print("%s", e.printer.Dim(fmt.Sprintf("\nmore: --page %d", page.Page+1)))
	}
	return nil
}

type bookmarkLister interface {
	Bookmarks(ctx context.Context, page, pageSize int) (*api.Page, error)
}

// allBookmarks walks every bookmark page.
func allBookmarks(ctx context.Context, l bookmarkLister) ([]api.Article, error) {
	var out []api.Article
	for page := 1; ; page++ {
		p, err := l.Bookmarks(ctx, page, bookmarksPageSize)
		if err != nil {
			return nil, fmt.Errorf("listing bookmarks page %d: %w", page, err)
		}
		out = append(out, p.Articles...)
		if !p.HasMore || len(p.Articles) == 0 {
			return out, nil
		}
	}
}

func setBookmark(ctx context.Context, e *env, rawID string, want bool) error {
	id, err := parseArticleID(rawID)
	if err != nil {
		return err
	}
	if err := e.requireAuth(); err != nil {
		return err
	}
	article, err := e.client.GetArticle(ctx, id)
	if err != nil {
		return fmt.Errorf("loading article: %w", err)
	}

	card := interaction.NewCard(*article)
	if card.Snapshot().Bookmarked == want {
		if want {
			e.printer.Info("Already bookmarked.")
		} else {
			e.printer.Info("Not bookmarked.")
		}
		return nil
	}
	if err := card.ToggleBookmark(ctx, e.auth, e.client); err != nil {
		return fmt.Errorf("updating bookmark: %w", err)
	}
	if want {
		e.printer.Success("Bookmarked %s", truncate(article.Title, titleWidth))
	} else {
		e.printer.Success("Removed bookmark on %s", truncate(article.Title, titleWidth))
	}
	return nil
}

func init() {
	bookmarksCmd.Flags().IntVar(&flagBookmarksPage, "page", 1, "page number")
	bookmarksListCmd.Flags().IntVar(&flagBookmarksPage, "page", 1, "page number")
	bookmarksExportCmd.Flags().StringVarP(&flagExportOutput, "output", "o", "", "write to this file instead of stdout")

	bookmarksCmd.AddCommand(bookmarksListCmd, bookmarksAddCmd, bookmarksRemoveCmd, bookmarksExportCmd)
}
