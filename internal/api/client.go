// Package api is the typed client for the zyyp REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultErrorMessage = "Request failed"

// Error is returned for every non-2xx response.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
}

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// TokenSource yields the bearer credential, if any, for the next request.
type TokenSource interface {
	Token() (string, bool)
}

type Client struct {
	baseURL   string
	tokens    TokenSource
	http      *http.Client
	logger    *slog.Logger
	userAgent string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		tokens:    tokens,
		http:      &http.Client{Timeout: 30 * time.Second},
		logger:    slog.Default(),
		userAgent: "zyyp",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues exactly one HTTP call. No retries.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request", "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	msg := defaultErrorMessage
	var body errorBody
	if len(raw) > 0 && json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Message != "":
			msg = body.Message
		case body.Error != "":
			msg = body.Error
		}
	}
	return &Error{StatusCode: resp.StatusCode, Message: msg}
}

// ArticleQuery selects one page of the article listing.
type ArticleQuery struct {
	Tags     []string
	Search   string
	SortBy   string
	Page     int
	PageSize int
}

func (q ArticleQuery) Values() url.Values {
	v := url.Values{}
	if len(q.Tags) > 0 {
		v.Set("tags", strings.Join(q.Tags, ","))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.SortBy != "" {
		v.Set("sort_by", q.SortBy)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	return v
}

func withQuery(path string, v url.Values) string {
	if enc := v.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

func (c *Client) ListArticles(ctx context.Context, q ArticleQuery) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, withQuery("/articles", q.Values()), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetArticle(ctx context.Context, id uuid.UUID) (*Article, error) {
	var a Article
	if err := c.do(ctx, http.MethodGet, "/articles/"+id.String(), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) TrendingArticles(ctx context.Context, limit int) ([]Article, error) {
	v := url.Values{}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var out []Article
	if err := c.do(ctx, http.MethodGet, withQuery("/articles/trending", v), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	var out []Tag
	if err := c.do(ctx, http.MethodGet, "/tags", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) PopularTags(ctx context.Context) ([]Tag, error) {
	var out []Tag
	if err := c.do(ctx, http.MethodGet, "/tags/popular", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Bookmarks(ctx context.Context, page, pageSize int) (*Page, error) {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("page_size", strconv.Itoa(pageSize))
	var out Page
	if err := c.do(ctx, http.MethodGet, withQuery("/bookmarks", v), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBookmark returns the bookmark id assigned by the backend, if any.
func (c *Client) CreateBookmark(ctx context.Context, articleID uuid.UUID) (string, error) {
	body := map[string]string{"article_id": articleID.String()}
	var env envelope[struct {
		ID string `json:"id"`
	}]
	if err := c.do(ctx, http.MethodPost, "/bookmarks", body, &env); err != nil {
		return "", err
	}
	if env.Data == nil {
		return "", nil
	}
	return env.Data.ID, nil
}

func (c *Client) DeleteBookmark(ctx context.Context, articleID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/bookmarks/"+articleID.String(), nil, nil)
}

// CastVote casts or replaces the viewer's vote.
func (c *Client) CastVote(ctx context.Context, articleID uuid.UUID, dir Vote) (*VoteResult, error) {
	if dir != VoteUp && dir != VoteDown {
		return nil, fmt.Errorf("cannot cast vote %q", dir.String())
	}
	body := map[string]string{"article_id": articleID.String(), "vote_type": string(dir)}
	return c.voteCall(ctx, http.MethodPost, "/votes", body)
}

func (c *Client) RemoveVote(ctx context.Context, articleID uuid.UUID) (*VoteResult, error) {
	return c.voteCall(ctx, http.MethodDelete, "/votes/"+articleID.String(), nil)
}

func (c *Client) voteCall(ctx context.Context, method, path string, body any) (*VoteResult, error) {
	var env envelope[VoteResult]
	if err := c.do(ctx, method, path, body, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%s %s: response carried no vote counts", method, path)
	}
	return env.Data, nil
}

func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, u ProfileUpdate) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodPatch, "/profile", u, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ReadingStats(ctx context.Context) (*ReadingStats, error) {
	var s ReadingStats
	if err := c.do(ctx, http.MethodGet, "/profile/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
