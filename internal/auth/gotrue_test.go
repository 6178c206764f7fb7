package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSessions struct {
	t  Tokens
	ok bool
}

func (m *memSessions) LoadSession() (Tokens, bool, error) { return m.t, m.ok, nil }
func (m *memSessions) SaveSession(t Tokens) error         { m.t, m.ok = t, true; return nil }
func (m *memSessions) ClearSession() error                { m.t, m.ok = Tokens{}, false; return nil }

func TestGoTrueSignOutClearsOnRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := &memSessions{t: Tokens{AccessToken: signToken(t, "u", "", time.Now().Add(time.Hour))}, ok: true}
	g := NewGoTrue(srv.URL, "anon", store, nil, nil)
	var events []Event
	g.OnChange(func(ev Event, _ *Session) { events = append(events, ev) })

	err := g.SignOut(context.Background())
	require.Error(t, err)
	assert.False(t, store.ok)
	assert.Equal(t, []Event{EventSignedOut}, events)
}

func TestGoTrueRefreshesExpiredSession(t *testing.T) {
	fresh := signToken(t, "u", "u@example.com", time.Now().Add(time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "refresh_token", r.URL.Query().Get("grant_type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "old-refresh", body["refresh_token"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  fresh,
			"refresh_token": "new-refresh",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	store := &memSessions{t: Tokens{
		AccessToken:  signToken(t, "u", "u@example.com", time.Now().Add(-time.Minute)),
		RefreshToken: "old-refresh",
	}, ok: true}
	g := NewGoTrue(srv.URL, "anon", store, nil, nil)
	var events []Event
	g.OnChange(func(ev Event, _ *Session) { events = append(events, ev) })

	sess, err := g.Session(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fresh, sess.AccessToken)
	assert.Equal(t, "new-refresh", store.t.RefreshToken)
	assert.Equal(t, []Event{EventTokenRefreshed}, events)
}

func TestGoTrueSessionWhenSignedOut(t *testing.T) {
	g := NewGoTrue("http://unused", "", &memSessions{}, nil, nil)
	sess, err := g.Session(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sess)

	_, err = g.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestGoTrueSignInExchangesCode(t *testing.T) {
	access := signToken(t, "u-42", "u@example.com", time.Now().Add(time.Hour))
	var verifier string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pkce", r.URL.Query().Get("grant_type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "the-code", body["auth_code"])
		verifier = body["code_verifier"]
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": access, "refresh_token": "r"})
	}))
	defer srv.Close()

	store := &memSessions{}
	// The fake browser follows the redirect straight to the loopback callback.
	open := func(raw string) error {
		u, err := url.Parse(raw)
		if err != nil {
			return err
		}
		q := u.Query()
		assert.Equal(t, "github", q.Get("provider"))
		assert.Equal(t, "s256", q.Get("code_challenge_method"))
		assert.NotEmpty(t, q.Get("code_challenge"))
		go func() {
			resp, err := http.Get(q.Get("redirect_to") + "?code=the-code")
			if err == nil {
				resp.Body.Close()
			}
		}()
		return nil
	}
	g := NewGoTrue(srv.URL, "anon", store, open, nil)
	g.CallbackTimeout = 5 * time.Second

	sess, err := g.SignIn(context.Background(), "github")
	require.NoError(t, err)
	assert.Equal(t, "u-42", sess.User.ID)
	assert.NotEmpty(t, verifier)
	assert.True(t, store.ok)
	assert.Equal(t, access, store.t.AccessToken)
}

func TestGoTrueSurfacesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Refresh Token Not Found"}`))
	}))
	defer srv.Close()

	store := &memSessions{t: Tokens{RefreshToken: "gone"}, ok: true}
	g := NewGoTrue(srv.URL, "", store, nil, nil)
	_, err := g.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Refresh Token Not Found")
}
