package interaction

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iAmNsengi/zyyp/internal/api"
)

// Set holds the cards currently mounted in a view. A card is created the
// first time its article is rendered and kept until Reset.
type Set struct {
	mu    sync.Mutex
	cards map[uuid.UUID]*Card
}

func NewSet() *Set {
	return &Set{cards: make(map[uuid.UUID]*Card)}
}

// Card returns the mounted card for a, seeding it from a on first use.
func (s *Set) Card(a api.Article) *Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cards[a.ID]; ok {
		return c
	}
	c := NewCard(a)
	s.cards[a.ID] = c
	return c
}

func (s *Set) Lookup(id uuid.UUID) (*Card, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cards[id]
	return c, ok
}

// Reset unmounts every card.
func (s *Set) Reset() {
	s.mu.Lock()
	s.cards = make(map[uuid.UUID]*Card)
	s.mu.Unlock()
}

func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cards)
}

// FlashDuration bounds the cosmetic highlight after a vote or bookmark press.
const FlashDuration = 300 * time.Millisecond

// Flash marks an article as animating for a fixed window. It never touches
// card state.
type Flash struct {
	until map[uuid.UUID]time.Time
	now   func() time.Time
}

func NewFlash() *Flash {
	return &Flash{until: make(map[uuid.UUID]time.Time), now: time.Now}
}

func (f *Flash) Start(id uuid.UUID) {
	f.until[id] = f.now().Add(FlashDuration)
}

func (f *Flash) Active(id uuid.UUID) bool {
	until, ok := f.until[id]
	if !ok {
		return false
	}
	if f.now().After(until) {
		delete(f.until, id)
		return false
	}
	return true
}
