package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Vote is the viewer's vote on an article.
type Vote string

const (
	VoteNone Vote = ""
	VoteUp   Vote = "up"
	VoteDown Vote = "down"
)

// ParseVote accepts "up", "down" and "none" (or empty).
func ParseVote(s string) (Vote, error) {
	switch s {
	case "up":
		return VoteUp, nil
	case "down":
		return VoteDown, nil
	case "", "none":
		return VoteNone, nil
	default:
		return VoteNone, fmt.Errorf("unknown vote %q (valid: up, down, none)", s)
	}
}

func (v Vote) String() string {
	if v == VoteNone {
		return "none"
	}
	return string(v)
}

// UnmarshalJSON maps null to VoteNone.
func (v *Vote) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = VoteNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseVote(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON writes VoteNone as null.
func (v Vote) MarshalJSON() ([]byte, error) {
	if v == VoteNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(v))
}

type Tag struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Color        string    `json:"color"`
	CreatedAt    time.Time `json:"created_at"`
	ArticleCount *int      `json:"article_count,omitempty"`
}

type Article struct {
	ID                 uuid.UUID  `json:"id"`
	Title              string     `json:"title"`
	URL                string     `json:"url"`
	Description        *string    `json:"description"`
	Author             *string    `json:"author"`
	PublishedAt        *time.Time `json:"published_at"`
	SourceName         string     `json:"source_name"`
	ImageURL           *string    `json:"image_url"`
	ReadingTimeMinutes int        `json:"reading_time_minutes"`
	Upvotes            int        `json:"upvotes"`
	Downvotes          int        `json:"downvotes"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	Tags               []Tag      `json:"tags"`

	// Viewer-relative, filled in by the backend per request.
	IsBookmarked bool `json:"is_bookmarked,omitempty"`
	UserVote     Vote `json:"user_vote,omitempty"`
}

const maxDisplayTags = 3

// DisplayTags returns the tags shown on a card.
func (a Article) DisplayTags() []Tag {
	if len(a.Tags) <= maxDisplayTags {
		return a.Tags
	}
	return a.Tags[:maxDisplayTags]
}

// Summary returns the description or an empty string.
func (a Article) Summary() string {
	if a.Description == nil {
		return ""
	}
	return *a.Description
}

// Published falls back to CreatedAt when the feed item carried no date.
func (a Article) Published() time.Time {
	if a.PublishedAt != nil {
		return *a.PublishedAt
	}
	return a.CreatedAt
}

// Page is one batch of a paginated article listing.
type Page struct {
	Articles   []Article `json:"articles"`
	TotalCount int       `json:"total_count"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	HasMore    bool      `json:"has_more"`
}

type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
	Bio       *string   `json:"bio"`
	Interests []string  `json:"interests"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileUpdate is a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	Username  *string
	Bio       *string
	Interests []string

	// ClearBio sends an explicit null bio.
	ClearBio bool
}

func (u ProfileUpdate) MarshalJSON() ([]byte, error) {
	body := map[string]any{}
	if u.Username != nil {
		body["username"] = *u.Username
	}
	switch {
	case u.ClearBio:
		body["bio"] = nil
	case u.Bio != nil:
		body["bio"] = *u.Bio
	}
	if u.Interests != nil {
		body["interests"] = u.Interests
	}
	return json.Marshal(body)
}

type ReadingStats struct {
	TotalArticlesRead       int `json:"total_articles_read"`
	TotalReadingTimeMinutes int `json:"total_reading_time_minutes"`
	CurrentStreakDays       int `json:"current_streak_days"`
	LongestStreakDays       int `json:"longest_streak_days"`
	TotalBookmarks          int `json:"total_bookmarks"`
	TotalVotes              int `json:"total_votes"`
}

// VoteResult carries the server-confirmed counters after a vote mutation.
type VoteResult struct {
	Upvotes   int  `json:"upvotes"`
	Downvotes int  `json:"downvotes"`
	UserVote  Vote `json:"user_vote"`
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
