package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/filter"
)

type fakeFetcher struct {
	mu      sync.Mutex
	calls   []api.ArticleQuery
	respond func(q api.ArticleQuery) (*api.Page, error)
}

func (f *fakeFetcher) ListArticles(_ context.Context, q api.ArticleQuery) (*api.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()
	return f.respond(q)
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func articles(from, to int) []api.Article {
	var out []api.Article
	for i := from; i <= to; i++ {
		out = append(out, api.Article{
			ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("A%d", i))),
			Title: fmt.Sprintf("A%d", i),
		})
	}
	return out
}

func titles(as []api.Article) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Title
	}
	return out
}

// paged serves total articles, 20 per page.
func paged(total int) func(q api.ArticleQuery) (*api.Page, error) {
	return func(q api.ArticleQuery) (*api.Page, error) {
		from := (q.Page-1)*q.PageSize + 1
		to := min(from+q.PageSize-1, total)
		return &api.Page{
			Articles:   articles(from, to),
			TotalCount: total,
			Page:       q.Page,
			PageSize:   q.PageSize,
			HasMore:    to < total,
		}, nil
	}
}

func TestScrollLoadsSecondPageInOrder(t *testing.T) {
	f := &fakeFetcher{respond: paged(45)}
	e := New(f, filter.New())

	ok, err := e.LoadNextPage(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, e.Articles(), 20)
	assert.Equal(t, 45, e.TotalCount())

	req, ok := e.Near(19)
	require.True(t, ok)
	assert.Equal(t, 2, req.Page)
	page, err := e.Fetch(context.Background(), req)
	require.NoError(t, err)
	require.True(t, e.Resolve(req, page, nil))

	got := titles(e.Articles())
	require.Len(t, got, 40)
	assert.Equal(t, "A1", got[0])
	assert.Equal(t, "A40", got[39])
	assert.True(t, e.HasMore())

	q := f.calls[1]
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, PageSize, q.PageSize)
	assert.Equal(t, "newest", q.SortBy)
}

func TestNearDoesNothingFarFromEnd(t *testing.T) {
	f := &fakeFetcher{respond: paged(45)}
	e := New(f, filter.New())
	_, err := e.LoadNextPage(context.Background())
	require.NoError(t, err)

	_, ok := e.Near(5)
	assert.False(t, ok)
	assert.Equal(t, 1, f.callCount())
}

func TestBeginIsGuardedWhileInFlight(t *testing.T) {
	f := &fakeFetcher{respond: paged(45)}
	e := New(f, filter.New())

	first, ok := e.Begin()
	require.True(t, ok)

	_, again := e.Begin()
	assert.False(t, again)
	_, near := e.Near(0)
	assert.False(t, near)
	ok, err := e.LoadNextPage(context.Background())
	assert.False(t, ok)
	assert.NoError(t, err)
	assert.Equal(t, 0, f.callCount())
	assert.True(t, e.Loading())

	page, err := e.Fetch(context.Background(), first)
	require.NoError(t, err)
	require.True(t, e.Resolve(first, page, nil))
	assert.False(t, e.Loading())
}

func TestNoMorePagesSuspendsUntilKeyChanges(t *testing.T) {
	f := &fakeFetcher{respond: paged(5)}
	filters := filter.New()
	e := New(f, filters)

	_, err := e.LoadNextPage(context.Background())
	require.NoError(t, err)
	assert.False(t, e.HasMore())

	for i := 0; i < 3; i++ {
		ok, err := e.LoadNextPage(context.Background())
		assert.False(t, ok)
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, f.callCount())

	filters.SetSort(filter.SortPopular)
	ok, err := e.LoadNextPage(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, f.callCount())
	assert.Equal(t, 1, f.calls[1].Page)
}

func TestKeyChangeResetsAndDropsStaleResponse(t *testing.T) {
	f := &fakeFetcher{respond: paged(45)}
	filters := filter.New()
	e := New(f, filters)

	_, err := e.LoadNextPage(context.Background())
	require.NoError(t, err)

	filters.SetSearch("old")
	stale, ok := e.Begin()
	require.True(t, ok)
	assert.Equal(t, 1, stale.Page)
	assert.Empty(t, e.Articles())

	filters.SetSearch("new")
	assert.Empty(t, e.Articles())
	assert.Equal(t, 0, e.Pages())

	fresh, ok := e.Begin()
	require.True(t, ok, "request for the old key must not block the new key")
	assert.Equal(t, 1, fresh.Page)

	freshPage := &api.Page{Articles: articles(100, 101), TotalCount: 2, Page: 1}
	require.True(t, e.Resolve(fresh, freshPage, nil))

	stalePage := &api.Page{Articles: articles(1, 20), TotalCount: 45, Page: 1, HasMore: true}
	assert.False(t, e.Resolve(stale, stalePage, nil))

	assert.Equal(t, []string{"A100", "A101"}, titles(e.Articles()))
	assert.Equal(t, 2, e.TotalCount())
}

func TestStaleResponseDroppedWhenKeyReturns(t *testing.T) {
	f := &fakeFetcher{respond: paged(45)}
	filters := filter.New()
	e := New(f, filters)

	stale, ok := e.Begin()
	require.True(t, ok)

	filters.ToggleTag("go")
	e.Articles()
	filters.ToggleTag("go")

	assert.False(t, e.Resolve(stale, &api.Page{Articles: articles(1, 20), HasMore: true}, nil))
	assert.Empty(t, e.Articles())
}

func TestFailedFetchKeepsPages(t *testing.T) {
	boom := errors.New("boom")
	fail := false
	f := &fakeFetcher{}
	f.respond = func(q api.ArticleQuery) (*api.Page, error) {
		if fail {
			return nil, boom
		}
		return paged(45)(q)
	}
	e := New(f, filter.New())

	_, err := e.LoadNextPage(context.Background())
	require.NoError(t, err)

	fail = true
	ok, err := e.LoadNextPage(context.Background())
	assert.True(t, ok)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, e.Err(), boom)
	assert.Len(t, e.Articles(), 20)
	assert.False(t, e.Loading())
	assert.Equal(t, 2, f.callCount(), "no automatic retry")

	fail = false
	_, err = e.LoadNextPage(context.Background())
	require.NoError(t, err)
	assert.NoError(t, e.Err())
	assert.Len(t, e.Articles(), 40)
}

func TestTotalCountFromFirstPage(t *testing.T) {
	f := &fakeFetcher{}
	f.respond = func(q api.ArticleQuery) (*api.Page, error) {
		return &api.Page{Articles: articles(q.Page*10, q.Page*10), TotalCount: 100 + q.Page, Page: q.Page, HasMore: true}, nil
	}
	e := New(f, filter.New())
	for i := 0; i < 3; i++ {
		_, err := e.LoadNextPage(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 101, e.TotalCount())
}

func TestDuplicateArticlesAcrossPagesAreDropped(t *testing.T) {
	f := &fakeFetcher{}
	f.respond = func(q api.ArticleQuery) (*api.Page, error) {
		if q.Page == 1 {
			return &api.Page{Articles: articles(1, 3), HasMore: true, Page: 1}, nil
		}
		return &api.Page{Articles: articles(3, 5), Page: 2}, nil
	}
	e := New(f, filter.New())
	_, _ = e.LoadNextPage(context.Background())
	_, _ = e.LoadNextPage(context.Background())

	assert.Equal(t, []string{"A1", "A2", "A3", "A4", "A5"}, titles(e.Articles()))
}

func TestRequestQueryCarriesKey(t *testing.T) {
	filters := filter.New()
	filters.ToggleTag("rust")
	filters.ToggleTag("go")
	filters.SetSearch("raft")
	filters.SetSort(filter.SortTrending)
	f := &fakeFetcher{respond: paged(1)}
	e := New(f, filters, WithPageSize(10))

	_, err := e.LoadNextPage(context.Background())
	require.NoError(t, err)

	q := f.calls[0]
	assert.Equal(t, []string{"go", "rust"}, q.Tags)
	assert.Equal(t, "raft", q.Search)
	assert.Equal(t, "trending", q.SortBy)
	assert.Equal(t, 10, q.PageSize)
}

func TestResetReloadsFromFirstPage(t *testing.T) {
	f := &fakeFetcher{respond: paged(45)}
	e := New(f, filter.New())
	_, _ = e.LoadNextPage(context.Background())
	inflight, ok := e.Begin()
	require.True(t, ok)

	e.Reset()
	assert.Empty(t, e.Articles())
	assert.False(t, e.Resolve(inflight, &api.Page{Articles: articles(21, 40)}, nil))

	req, ok := e.Begin()
	require.True(t, ok)
	assert.Equal(t, 1, req.Page)
}
