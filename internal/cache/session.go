package cache

import (
	"fmt"
	"time"

	"github.com/iAmNsengi/zyyp/internal/auth"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyExpiresAt    = "expires_at"
)

var (
	_ auth.TokenStore   = (*Cache)(nil)
	_ auth.SessionStore = (*Cache)(nil)
)

// Token returns the stored bearer token. Read errors count as no token.
func (c *Cache) Token() (string, bool) {
	v, ok, err := c.getMeta(keyAccessToken)
	if err != nil || !ok || v == "" {
		return "", false
	}
	return v, true
}

func (c *Cache) SetToken(token string) error {
	return c.setMeta(keyAccessToken, token)
}

func (c *Cache) ClearToken() error {
	return c.deleteMeta(keyAccessToken)
}

func (c *Cache) LoadSession() (auth.Tokens, bool, error) {
	access, ok, err := c.getMeta(keyAccessToken)
	if err != nil || !ok {
		return auth.Tokens{}, false, err
	}
	refresh, _, err := c.getMeta(keyRefreshToken)
	if err != nil {
		return auth.Tokens{}, false, err
	}
	t := auth.Tokens{AccessToken: access, RefreshToken: refresh}

	exp, ok, err := c.getMeta(keyExpiresAt)
	if err != nil {
		return auth.Tokens{}, false, err
	}
	if ok && exp != "" {
		at, err := time.Parse(time.RFC3339, exp)
		if err != nil {
			return auth.Tokens{}, false, fmt.Errorf("parsing %s: %w", keyExpiresAt, err)
		}
		t.ExpiresAt = at
	}
	return t, true, nil
}

func (c *Cache) SaveSession(t auth.Tokens) error {
	tx, err := c.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	exp := ""
	if !t.ExpiresAt.IsZero() {
		exp = t.ExpiresAt.UTC().Format(time.RFC3339)
	}
	for _, kv := range [][2]string{
		{keyAccessToken, t.AccessToken},
		{keyRefreshToken, t.RefreshToken},
		{keyExpiresAt, exp},
	} {
		_, err := tx.Exec(`
			INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, kv[0], kv[1])
		if err != nil {
			return fmt.Errorf("saving %s: %w", kv[0], err)
		}
	}
	return tx.Commit()
}

func (c *Cache) ClearSession() error {
	return c.deleteMeta(keyAccessToken, keyRefreshToken, keyExpiresAt)
}
