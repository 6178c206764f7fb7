// Package interaction holds per-article vote and bookmark state.
//
// A Card is seeded once from the fetched article and afterwards only changes
// when the backend confirms a mutation; counters are always the server's
// values, never computed locally.
package interaction

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/iAmNsengi/zyyp/internal/api"
)

// ErrUnauthenticated is returned, without contacting the backend, when a
// signed-out viewer tries to vote or bookmark.
var ErrUnauthenticated = errors.New("sign in to vote or bookmark")

// ErrSuperseded is returned when the card changed while the request was
// outstanding and the response was not applied.
var ErrSuperseded = errors.New("card changed while request was in flight")

// ErrInFlight is returned when the card already has a request outstanding.
// One article carries at most one mutation at a time.
var ErrInFlight = errors.New("previous action on this article is still pending")

type Authenticator interface {
	IsAuthenticated() bool
}

type Voter interface {
	CastVote(ctx context.Context, articleID uuid.UUID, dir api.Vote) (*api.VoteResult, error)
	RemoveVote(ctx context.Context, articleID uuid.UUID) (*api.VoteResult, error)
}

type Bookmarker interface {
	CreateBookmark(ctx context.Context, articleID uuid.UUID) (string, error)
	DeleteBookmark(ctx context.Context, articleID uuid.UUID) error
}

// Snapshot is a copy of a card's display state.
type Snapshot struct {
	UserVote   api.Vote
	Bookmarked bool
	Upvotes    int
	Downvotes  int
}

// Net is upvotes minus downvotes.
func (s Snapshot) Net() int { return s.Upvotes - s.Downvotes }

type Card struct {
	mu        sync.Mutex
	articleID uuid.UUID
	state     Snapshot

	// inflight is the seq of the outstanding action, 0 when idle.
	inflight uint64
	seq      uint64
}

func NewCard(a api.Article) *Card {
	return &Card{
		articleID: a.ID,
		state: Snapshot{
			UserVote:   a.UserVote,
			Bookmarked: a.IsBookmarked,
			Upvotes:    a.Upvotes,
			Downvotes:  a.Downvotes,
		},
	}
}

func (c *Card) ArticleID() uuid.UUID { return c.articleID }

// Pending reports whether a vote or bookmark request is outstanding.
func (c *Card) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight != 0
}

// reserve marks the card busy and returns the new action's seq. Callers
// hold c.mu.
func (c *Card) reserve() (uint64, error) {
	if c.inflight != 0 {
		return 0, ErrInFlight
	}
	c.seq++
	c.inflight = c.seq
	return c.seq, nil
}

// release ends the outstanding action seq. It reports false when seq is not
// the action the card is waiting on. Callers hold c.mu.
func (c *Card) release(seq uint64) bool {
	if seq == 0 || seq != c.inflight {
		return false
	}
	c.inflight = 0
	return true
}

func (c *Card) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// VoteAction is a planned vote mutation tagged with the vote held when it
// was planned.
type VoteAction struct {
	ArticleID uuid.UUID
	Dir       api.Vote
	Remove    bool
	prior     api.Vote
	seq       uint64
}

// PlanVote decides between removing and casting: voting the direction already
// held removes the vote, anything else casts or replaces it.
func (c *Card) PlanVote(auth Authenticator, dir api.Vote) (VoteAction, error) {
	if auth == nil || !auth.IsAuthenticated() {
		return VoteAction{}, ErrUnauthenticated
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	seq, err := c.reserve()
	if err != nil {
		return VoteAction{}, err
	}
	return VoteAction{
		ArticleID: c.articleID,
		Dir:       dir,
		Remove:    c.state.UserVote == dir,
		prior:     c.state.UserVote,
		seq:       seq,
	}, nil
}

// Execute sends the planned request.
func (a VoteAction) Execute(ctx context.Context, v Voter) (*api.VoteResult, error) {
	if a.Remove {
		return v.RemoveVote(ctx, a.ArticleID)
	}
	return v.CastVote(ctx, a.ArticleID, a.Dir)
}

// ApplyVote adopts the server counts and ends the pending action. A failed
// request, or a card whose vote no longer matches the planned prior, is left
// untouched.
func (c *Card) ApplyVote(a VoteAction, res *api.VoteResult, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.release(a.seq) || c.state.UserVote != a.prior {
		if err != nil {
			return err
		}
		return ErrSuperseded
	}
	if err != nil {
		return err
	}
	c.state.Upvotes = res.Upvotes
	c.state.Downvotes = res.Downvotes
	if a.Remove {
		c.state.UserVote = api.VoteNone
	} else {
		c.state.UserVote = a.Dir
	}
	return nil
}

// CastVote plans, sends, and applies a vote in one call.
func (c *Card) CastVote(ctx context.Context, auth Authenticator, v Voter, dir api.Vote) error {
	action, err := c.PlanVote(auth, dir)
	if err != nil {
		return err
	}
	res, err := action.Execute(ctx, v)
	return c.ApplyVote(action, res, err)
}

// BookmarkAction is a planned bookmark toggle.
type BookmarkAction struct {
	ArticleID uuid.UUID
	Remove    bool
	seq       uint64
}

func (c *Card) PlanBookmark(auth Authenticator) (BookmarkAction, error) {
	if auth == nil || !auth.IsAuthenticated() {
		return BookmarkAction{}, ErrUnauthenticated
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	seq, err := c.reserve()
	if err != nil {
		return BookmarkAction{}, err
	}
	return BookmarkAction{ArticleID: c.articleID, Remove: c.state.Bookmarked, seq: seq}, nil
}

func (a BookmarkAction) Execute(ctx context.Context, b Bookmarker) error {
	if a.Remove {
		return b.DeleteBookmark(ctx, a.ArticleID)
	}
	_, err := b.CreateBookmark(ctx, a.ArticleID)
	return err
}

func (c *Card) ApplyBookmark(a BookmarkAction, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.release(a.seq) || c.state.Bookmarked != a.Remove {
		if err != nil {
			return err
		}
		return ErrSuperseded
	}
	if err != nil {
		return err
	}
	c.state.Bookmarked = !a.Remove
	return nil
}

func (c *Card) ToggleBookmark(ctx context.Context, auth Authenticator, b Bookmarker) error {
	action, err := c.PlanBookmark(auth)
	if err != nil {
		return err
	}
	return c.ApplyBookmark(action, action.Execute(ctx, b))
}
