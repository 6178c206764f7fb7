package cache

import "time"

// HistoryEntry is an article the user opened from this machine.
type HistoryEntry struct {
	ArticleID   string
	Title       string
	URL         string
	Source      string
	Tags        string
	ReadingTime int
	OpenedAt    time.Time
}

type QueryOpts struct {
	Since  time.Time
	Search string
	Limit  int
}
