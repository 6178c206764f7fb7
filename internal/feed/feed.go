// Package feed turns the filter selection into an incrementally loaded list
// of articles.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/iAmNsengi/zyyp/internal/api"
	"github.com/iAmNsengi/zyyp/internal/filter"
)

const (
	PageSize = 20

	// PrefetchDistance is how close to the end of the loaded list the
	// cursor must be before the next page is requested.
	PrefetchDistance = 3
)

type Fetcher interface {
	ListArticles(ctx context.Context, q api.ArticleQuery) (*api.Page, error)
}

// KeySource yields the current filter key.
type KeySource interface {
	Key() filter.Key
}

// Request is one outstanding page fetch, tagged with the key and epoch that
// were current when it was issued.
type Request struct {
	Key   filter.Key
	Page  int
	epoch uint64
}

func (r Request) Query(pageSize int) api.ArticleQuery {
	return api.ArticleQuery{
		Tags:     r.Key.TagSlugs(),
		Search:   r.Key.Search,
		SortBy:   string(r.Key.Sort),
		Page:     r.Page,
		PageSize: pageSize,
	}
}

type Engine struct {
	mu       sync.Mutex
	fetcher  Fetcher
	keys     KeySource
	pageSize int
	logger   *slog.Logger

	key       filter.Key
	synced    bool
	epoch     uint64
	pages     []api.Page
	inflight  bool
	exhausted bool
	err       error
}

type Option func(*Engine)

func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func New(fetcher Fetcher, keys KeySource, opts ...Option) *Engine {
	e := &Engine{
		fetcher:  fetcher,
		keys:     keys,
		pageSize: PageSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// syncKey discards everything loaded for a previous key. Caller holds mu.
func (e *Engine) syncKey() {
	k := e.keys.Key()
	if e.synced && k == e.key {
		return
	}
	if e.synced {
		e.logger.Debug("filter key changed", "from", e.key.String(), "to", k.String())
	}
	e.key = k
	e.synced = true
	e.discard()
}

// discard drops pages and bumps the epoch so in-flight results are ignored.
// Caller holds mu.
func (e *Engine) discard() {
	e.epoch++
	e.pages = nil
	e.inflight = false
	e.exhausted = false
	e.err = nil
}

// Reset reloads the current key from page 1.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncKey()
	e.discard()
}

// Begin reserves the next page fetch for the current key. It returns false
// when a fetch is already in flight or the last page reported no more.
func (e *Engine) Begin() (Request, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncKey()
	return e.begin()
}

func (e *Engine) begin() (Request, bool) {
	if e.inflight || e.exhausted {
		return Request{}, false
	}
	e.inflight = true
	e.err = nil
	return Request{Key: e.key, Page: len(e.pages) + 1, epoch: e.epoch}, true
}

// Near is the proximity trigger: index is the position of the item the
// viewer has reached. A fetch begins only when index is within
// PrefetchDistance of the end of the loaded list.
func (e *Engine) Near(index int) (Request, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncKey()
	if len(e.pages) > 0 && index < e.countLocked()-PrefetchDistance {
		return Request{}, false
	}
	return e.begin()
}

func (e *Engine) Fetch(ctx context.Context, req Request) (*api.Page, error) {
	page, err := e.fetcher.ListArticles(ctx, req.Query(e.pageSize))
	if err != nil {
		return nil, fmt.Errorf("loading page %d: %w", req.Page, err)
	}
	return page, nil
}

// Resolve commits the outcome of req. Results for a superseded key or epoch
// are dropped and Resolve reports false.
func (e *Engine) Resolve(req Request, page *api.Page, err error) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncKey()

	if req.epoch != e.epoch || req.Key != e.key || req.Page != len(e.pages)+1 {
		e.logger.Debug("dropping stale page", "page", req.Page, "key", req.Key.String())
		return false
	}
	e.inflight = false

	if err != nil {
		e.err = err
		e.logger.Warn("page fetch failed", "page", req.Page, "key", req.Key.String(), "error", err)
		return true
	}
	if page == nil {
		page = &api.Page{}
	}
	e.pages = append(e.pages, *page)
	if !page.HasMore {
		e.exhausted = true
	}
	return true
}

// LoadNextPage fetches the next page synchronously. It reports whether a
// page result was committed.
func (e *Engine) LoadNextPage(ctx context.Context) (bool, error) {
	req, ok := e.Begin()
	if !ok {
		return false, nil
	}
	page, err := e.Fetch(ctx, req)
	return e.Resolve(req, page, err), err
}

// Articles returns every loaded article in fetch order. An article that
// reappears on a later page is kept at its first position only.
func (e *Engine) Articles() []api.Article {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncKey()
	return e.articlesLocked()
}

func (e *Engine) articlesLocked() []api.Article {
	seen := make(map[uuid.UUID]struct{})
	var out []api.Article
	for _, p := range e.pages {
		for _, a := range p.Articles {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

func (e *Engine) countLocked() int {
	return len(e.articlesLocked())
}

// TotalCount is taken from the first page of the current key.
func (e *Engine) TotalCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncKey()
	if len(e.pages) == 0 {
		return 0
	}
	return e.pages[0].TotalCount
}

func (e *Engine) Pages() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncKey()
	return len(e.pages)
}

// HasMore is false once the latest page reported has_more=false.
func (e *Engine) HasMore() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncKey()
	return !e.exhausted
}

func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncKey()
	return e.inflight
}

func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncKey()
	return e.err
}

func (e *Engine) Key() filter.Key {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.syncKey()
	return e.key
}
