package querycache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iAmNsengi/zyyp/internal/api"
)

func TestGetCachesUntilExpiry(t *testing.T) {
	c := New[int]("numbers", 50*time.Millisecond, nil)
	var calls int
	load := func(context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, err := c.Get(context.Background(), "k", load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = c.Get(context.Background(), "k", load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	require.Eventually(t, func() bool {
		v, _ := c.Get(context.Background(), "k", load)
		return v == 2
	}, time.Second, 10*time.Millisecond)
}

func TestGetDoesNotCacheErrors(t *testing.T) {
	c := New[string]("s", time.Minute, nil)
	boom := errors.New("boom")

	_, err := c.Get(context.Background(), "k", func(context.Context) (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)

	v, err := c.Get(context.Background(), "k", func(context.Context) (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestConcurrentLoadsShareOneCall(t *testing.T) {
	c := New[int]("n", time.Minute, nil)
	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 7, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Get(context.Background(), "k", load)
			assert.NoError(t, err)
			assert.Equal(t, 7, v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

type fakeSource struct {
	trendingCalls, tagCalls, popularCalls int
}

func (f *fakeSource) TrendingArticles(_ context.Context, limit int) ([]api.Article, error) {
	f.trendingCalls++
	out := make([]api.Article, limit)
	for i := range out {
		out[i].ID = uuid.New()
	}
	return out, nil
}

func (f *fakeSource) Tags(context.Context) ([]api.Tag, error) {
	f.tagCalls++
	return []api.Tag{{Slug: "go"}, {Slug: "rust"}}, nil
}

func (f *fakeSource) PopularTags(context.Context) ([]api.Tag, error) {
	f.popularCalls++
	return []api.Tag{{Slug: "go"}}, nil
}

func TestReadsKeysByQuery(t *testing.T) {
	src := &fakeSource{}
	r := NewReads(src, nil)
	ctx := context.Background()

	a, err := r.Trending(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, a, 5)
	_, _ = r.Trending(ctx, 5)
	b, err := r.Trending(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, b, 3)
	assert.Equal(t, 2, src.trendingCalls)

	all, err := r.Tags(ctx)
	require.NoError(t, err)
	popular, err := r.PopularTags(ctx)
	require.NoError(t, err)
	_, _ = r.Tags(ctx)
	assert.Len(t, all, 2)
	assert.Len(t, popular, 1)
	assert.Equal(t, 1, src.tagCalls)
	assert.Equal(t, 1, src.popularCalls)

	r.InvalidateTrending()
	_, _ = r.Trending(ctx, 5)
	assert.Equal(t, 3, src.trendingCalls)
}
