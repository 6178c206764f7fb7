// Package filter holds the viewer's tag, search and sort selection.
package filter

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

type Sort string

const (
	SortNewest   Sort = "newest"
	SortPopular  Sort = "popular"
	SortTrending Sort = "trending"
)

// Sorts returns the sort options in display order.
func Sorts() []Sort {
	return []Sort{SortNewest, SortPopular, SortTrending}
}

func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case SortNewest, SortPopular, SortTrending:
		return Sort(s), nil
	case "":
		return SortNewest, nil
	}
	return SortNewest, fmt.Errorf("unknown sort %q (valid: newest, popular, trending)", s)
}

// Next cycles to the following sort option.
func (s Sort) Next() Sort {
	all := Sorts()
	i := slices.Index(all, s)
	return all[(i+1)%len(all)]
}

func (s Sort) Label() string {
	switch s {
	case SortPopular:
		return "Most Popular"
	case SortTrending:
		return "Trending"
	default:
		return "Newest"
	}
}

// Key identifies one distinct feed query. Tags are stored sorted so two
// selections with the same members compare equal.
type Key struct {
	Tags   string
	Search string
	Sort   Sort
}

// TagSlugs splits the canonical tag list back into slugs.
func (k Key) TagSlugs() []string {
	if k.Tags == "" {
		return nil
	}
	return strings.Split(k.Tags, ",")
}

func (k Key) String() string {
	return fmt.Sprintf("tags=[%s] search=%q sort=%s", k.Tags, k.Search, k.Sort)
}

// State is the mutable filter selection.
type State struct {
	mu     sync.RWMutex
	tags   []string
	search string
	sort   Sort
}

func New() *State {
	return &State{sort: SortNewest}
}

// ToggleTag adds slug if absent, removes it if present. Empty slugs and
// slugs containing the key separator are ignored.
func (s *State) ToggleTag(slug string) {
	if slug == "" || strings.Contains(slug, ",") {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.tags, slug); i >= 0 {
		s.tags = slices.Delete(s.tags, i, i+1)
		return
	}
	s.tags = append(s.tags, slug)
}

func (s *State) SetSearch(q string) {
	s.mu.Lock()
	s.search = q
	s.mu.Unlock()
}

func (s *State) SetSort(sort Sort) {
	s.mu.Lock()
	s.sort = sort
	s.mu.Unlock()
}

func (s *State) Clear() {
	s.mu.Lock()
	s.tags = nil
	s.search = ""
	s.sort = SortNewest
	s.mu.Unlock()
}

// Tags returns the selected slugs in selection order.
func (s *State) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tags)
}

func (s *State) Selected(slug string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.tags, slug)
}

func (s *State) Search() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search
}

func (s *State) Sort() Sort {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sort
}

// Active reports whether a tag or search narrows the feed.
func (s *State) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tags) > 0 || s.search != ""
}

func (s *State) Key() Key {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags := slices.Clone(s.tags)
	slices.Sort(tags)
	return Key{Tags: strings.Join(tags, ","), Search: s.search, Sort: s.sort}
}
