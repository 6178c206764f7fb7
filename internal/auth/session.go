// Package auth mirrors the identity provider's session into local state.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotSignedIn is returned by operations that need a stored session.
var ErrNotSignedIn = errors.New("not signed in")

type Event int

const (
	EventSignedIn Event = iota
	EventSignedOut
	EventTokenRefreshed
)

func (e Event) String() string {
	switch e {
	case EventSignedIn:
		return "signed_in"
	case EventSignedOut:
		return "signed_out"
	case EventTokenRefreshed:
		return "token_refreshed"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

type Metadata struct {
	AvatarURL string `json:"avatar_url,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	UserName  string `json:"user_name,omitempty"`
}

type User struct {
	ID       string
	Email    string
	Metadata Metadata
}

// DisplayName picks the friendliest available name.
func (u User) DisplayName() string {
	switch {
	case u.Metadata.UserName != "":
		return u.Metadata.UserName
	case u.Metadata.FullName != "":
		return u.Metadata.FullName
	case u.Email != "":
		return u.Email
	}
	return u.ID
}

// Tokens are the persisted parts of a session.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type Session struct {
	Tokens
	User User
}

// Expired reports whether the access token is within skew of expiry.
func (s *Session) Expired(now time.Time, skew time.Duration) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(skew).Before(s.ExpiresAt)
}

type accessClaims struct {
	Email        string   `json:"email"`
	UserMetadata Metadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

// SessionFromTokens decodes the user from the access token's claims. The
// signature is not checked here; the backend verifies every request.
func SessionFromTokens(t Tokens) (*Session, error) {
	var claims accessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(t.AccessToken, &claims); err != nil {
		return nil, fmt.Errorf("decoding access token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("access token has no subject")
	}
	if t.ExpiresAt.IsZero() && claims.ExpiresAt != nil {
		t.ExpiresAt = claims.ExpiresAt.Time
	}
	return &Session{
		Tokens: t,
		User: User{
			ID:       claims.Subject,
			Email:    claims.Email,
			Metadata: claims.UserMetadata,
		},
	}, nil
}
