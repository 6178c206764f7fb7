package querycache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/iAmNsengi/zyyp/internal/api"
)

const (
	TrendingStaleTime = 5 * time.Minute
	TagsStaleTime     = 10 * time.Minute
)

// Source is the subset of the API client whose reads are shareable.
type Source interface {
	TrendingArticles(ctx context.Context, limit int) ([]api.Article, error)
	Tags(ctx context.Context) ([]api.Tag, error)
	PopularTags(ctx context.Context) ([]api.Tag, error)
}

// Reads fronts Source with stale-time caches.
type Reads struct {
	src      Source
	trending *Cache[[]api.Article]
	tags     *Cache[[]api.Tag]
}

func NewReads(src Source, logger *slog.Logger) *Reads {
	return &Reads{
		src:      src,
		trending: New[[]api.Article]("trending", TrendingStaleTime, logger),
		tags:     New[[]api.Tag]("tags", TagsStaleTime, logger),
	}
}

func (r *Reads) Trending(ctx context.Context, limit int) ([]api.Article, error) {
	return r.trending.Get(ctx, strconv.Itoa(limit), func(ctx context.Context) ([]api.Article, error) {
		return r.src.TrendingArticles(ctx, limit)
	})
}

func (r *Reads) Tags(ctx context.Context) ([]api.Tag, error) {
	return r.tags.Get(ctx, "all", r.src.Tags)
}

func (r *Reads) PopularTags(ctx context.Context) ([]api.Tag, error) {
	return r.tags.Get(ctx, "popular", r.src.PopularTags)
}

// InvalidateTrending drops cached trending lists, e.g. after a vote changed
// the counters they were ranked on.
func (r *Reads) InvalidateTrending() {
	r.trending.Purge()
}
