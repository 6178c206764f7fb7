package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/iAmNsengi/zyyp/internal/api"
)

// Listener receives every session change. sess is nil on sign-out.
type Listener func(ev Event, sess *Session)

// Provider is the external identity provider.
type Provider interface {
	// Session returns the current session, or nil when signed out.
	Session(ctx context.Context) (*Session, error)
	OnChange(fn Listener)
	SignIn(ctx context.Context, provider string) (*Session, error)
	SignOut(ctx context.Context) error
	Refresh(ctx context.Context) (*Session, error)
	// ClearSession forgets the stored session without contacting the server.
	ClearSession() error
}

// TokenStore persists the bearer credential the API client attaches.
type TokenStore interface {
	Token() (string, bool)
	SetToken(token string) error
	ClearToken() error
}

// State mirrors exactly one provider session.
type State struct {
	provider Provider
	tokens   TokenStore
	logger   *slog.Logger

	once sync.Once

	mu            sync.RWMutex
	user          *User
	profile       *api.Profile
	authenticated bool
	loading       bool
}

func NewState(p Provider, tokens TokenStore, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	return &State{provider: p, tokens: tokens, logger: logger, loading: true}
}

// Initialize looks the session up once and subscribes to provider changes
// for the rest of the process. Later calls do nothing.
func (s *State) Initialize(ctx context.Context) {
	s.once.Do(func() {
		sess, err := s.provider.Session(ctx)
		if err != nil {
			// An unusable session must not leave its bearer behind.
			s.logger.Error("auth initialization failed", "error", err)
			if err := s.provider.ClearSession(); err != nil {
				s.logger.Warn("clearing stored session", "error", err)
			}
			s.clear()
		} else if sess != nil {
			s.apply(EventSignedIn, sess)
		}

		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()

		s.provider.OnChange(s.apply)
	})
}

func (s *State) apply(ev Event, sess *Session) {
	s.logger.Debug("auth state change", "event", ev.String())
	if sess != nil && sess.User.ID != "" {
		if err := s.tokens.SetToken(sess.AccessToken); err != nil {
			s.logger.Warn("storing access token", "error", err)
		}
		u := sess.User
		s.mu.Lock()
		s.user = &u
		s.authenticated = true
		s.mu.Unlock()
		return
	}
	s.clear()
}

func (s *State) clear() {
	if err := s.tokens.ClearToken(); err != nil {
		s.logger.Warn("clearing access token", "error", err)
	}
	s.mu.Lock()
	s.user = nil
	s.profile = nil
	s.authenticated = false
	s.mu.Unlock()
}

func (s *State) SignIn(ctx context.Context, provider string) error {
	sess, err := s.provider.SignIn(ctx, provider)
	if err != nil {
		return fmt.Errorf("signing in with %s: %w", provider, err)
	}
	s.apply(EventSignedIn, sess)
	return nil
}

// SignOut always clears the local session; the remote error, if any, is
// returned for reporting only.
func (s *State) SignOut(ctx context.Context) error {
	err := s.provider.SignOut(ctx)
	s.clear()
	if err != nil {
		s.logger.Warn("remote sign-out failed", "error", err)
		return fmt.Errorf("remote sign-out: %w", err)
	}
	return nil
}

func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// User returns a copy of the signed-in user, or nil.
func (s *State) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *State) SetProfile(p *api.Profile) {
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
}

func (s *State) Profile() *api.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}
