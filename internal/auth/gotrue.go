package auth

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// SessionStore persists session tokens between runs.
type SessionStore interface {
	LoadSession() (Tokens, bool, error)
	SaveSession(t Tokens) error
	ClearSession() error
}

// GoTrue talks to a GoTrue-compatible identity server.
type GoTrue struct {
	baseURL string
	apiKey  string
	http    *http.Client
	store   SessionStore
	open    func(url string) error
	logger  *slog.Logger
	now     func() time.Time

	// CallbackTimeout bounds how long SignIn waits for the browser.
	CallbackTimeout time.Duration

	mu        sync.Mutex
	listeners []Listener
}

func NewGoTrue(baseURL, apiKey string, store SessionStore, open func(string) error, logger *slog.Logger) *GoTrue {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoTrue{
		baseURL:         strings.TrimRight(baseURL, "/"),
		apiKey:          apiKey,
		http:            &http.Client{Timeout: 15 * time.Second},
		store:           store,
		open:            open,
		logger:          logger,
		now:             time.Now,
		CallbackTimeout: 3 * time.Minute,
	}
}

func (g *GoTrue) OnChange(fn Listener) {
	g.mu.Lock()
	g.listeners = append(g.listeners, fn)
	g.mu.Unlock()
}

func (g *GoTrue) emit(ev Event, sess *Session) {
	g.mu.Lock()
	ls := append([]Listener(nil), g.listeners...)
	g.mu.Unlock()
	for _, fn := range ls {
		fn(ev, sess)
	}
}

// Session loads the stored session, refreshing it when the access token is
// about to expire.
func (g *GoTrue) Session(ctx context.Context) (*Session, error) {
	t, ok, err := g.store.LoadSession()
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if !ok {
		return nil, nil
	}
	sess, err := SessionFromTokens(t)
	if err != nil {
		return nil, err
	}
	if sess.Expired(g.now(), time.Minute) && sess.RefreshToken != "" {
		return g.Refresh(ctx)
	}
	return sess, nil
}

// Adopt stores tokens obtained out of band and announces the sign-in.
func (g *GoTrue) Adopt(t Tokens) (*Session, error) {
	sess, err := SessionFromTokens(t)
	if err != nil {
		return nil, err
	}
	if err := g.store.SaveSession(sess.Tokens); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	g.emit(EventSignedIn, sess)
	return sess, nil
}

// SignIn runs the OAuth PKCE flow through a loopback redirect.
func (g *GoTrue) SignIn(ctx context.Context, provider string) (*Session, error) {
	verifier, challenge, err := pkcePair()
	if err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("starting callback listener: %w", err)
	}
	redirect := fmt.Sprintf("http://%s/callback", ln.Addr().String())

	codes := make(chan string, 1)
	failures := make(chan error, 1)
	srv := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/callback" {
				http.NotFound(w, r)
				return
			}
			q := r.URL.Query()
			if msg := q.Get("error_description"); msg != "" {
				select {
				case failures <- errors.New(msg):
				default:
				}
				http.Error(w, "Sign-in failed: "+msg, http.StatusBadRequest)
				return
			}
			code := q.Get("code")
			if code == "" {
				http.Error(w, "missing code", http.StatusBadRequest)
				return
			}
			select {
			case codes <- code:
			default:
			}
			_, _ = io.WriteString(w, "Signed in to zyyp. You can close this window.")
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	authorize := g.baseURL + "/auth/v1/authorize?" + url.Values{
		"provider":              {provider},
		"redirect_to":           {redirect},
		"code_challenge":        {challenge},
		"code_challenge_method": {"s256"},
	}.Encode()
	g.logger.Info("opening identity provider", "provider", provider)
	if err := g.open(authorize); err != nil {
		return nil, fmt.Errorf("opening browser: %w", err)
	}

	wait, cancel := context.WithTimeout(ctx, g.CallbackTimeout)
	defer cancel()

	var code string
	select {
	case code = <-codes:
	case err := <-failures:
		return nil, err
	case <-wait.Done():
		return nil, fmt.Errorf("waiting for sign-in callback: %w", wait.Err())
	}

	t, err := g.token(ctx, "pkce", map[string]string{"auth_code": code, "code_verifier": verifier})
	if err != nil {
		return nil, err
	}
	return g.Adopt(t)
}

func (g *GoTrue) Refresh(ctx context.Context) (*Session, error) {
	stored, ok, err := g.store.LoadSession()
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if !ok || stored.RefreshToken == "" {
		return nil, ErrNotSignedIn
	}
	t, err := g.token(ctx, "refresh_token", map[string]string{"refresh_token": stored.RefreshToken})
	if err != nil {
		return nil, err
	}
	sess, err := SessionFromTokens(t)
	if err != nil {
		return nil, err
	}
	if err := g.store.SaveSession(sess.Tokens); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	g.emit(EventTokenRefreshed, sess)
	return sess, nil
}

// SignOut revokes the session remotely. The stored session is removed even
// when the remote call fails.
func (g *GoTrue) SignOut(ctx context.Context) error {
	stored, ok, loadErr := g.store.LoadSession()

	var remoteErr error
	if ok && stored.AccessToken != "" {
		remoteErr = g.post(ctx, "/auth/v1/logout", stored.AccessToken, nil, nil)
	}

	clearErr := g.store.ClearSession()
	g.emit(EventSignedOut, nil)
	return errors.Join(loadErr, remoteErr, clearErr)
}

func (g *GoTrue) ClearSession() error {
	return g.store.ClearSession()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
}

func (g *GoTrue) token(ctx context.Context, grant string, body map[string]string) (Tokens, error) {
	var resp tokenResponse
	if err := g.post(ctx, "/auth/v1/token?grant_type="+url.QueryEscape(grant), "", body, &resp); err != nil {
		return Tokens{}, err
	}
	if resp.AccessToken == "" {
		return Tokens{}, errors.New("identity server returned no access token")
	}
	t := Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	switch {
	case resp.ExpiresAt > 0:
		t.ExpiresAt = time.Unix(resp.ExpiresAt, 0)
	case resp.ExpiresIn > 0:
		t.ExpiresAt = g.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	return t, nil
}

func (g *GoTrue) post(ctx context.Context, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("apikey", g.apiKey)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e struct {
			Msg              string `json:"msg"`
			ErrorDescription string `json:"error_description"`
		}
		msg := http.StatusText(resp.StatusCode)
		if json.Unmarshal(raw, &e) == nil {
			if e.ErrorDescription != "" {
				msg = e.ErrorDescription
			} else if e.Msg != "" {
				msg = e.Msg
			}
		}
		return fmt.Errorf("identity server %s: %s (HTTP %d)", path, msg, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func pkcePair() (verifier, challenge string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generating code verifier: %w", err)
	}
	verifier = base64.RawURLEncoding.EncodeToString(buf)
	sum := sha256.Sum256([]byte(verifier))
	return verifier, base64.RawURLEncoding.EncodeToString(sum[:]), nil
}
