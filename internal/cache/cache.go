package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iAmNsengi/zyyp/internal/api"
	_ "modernc.org/sqlite"
)

type Cache struct {
	readDB  *sql.DB
	writeDB *sql.DB
}

func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	c := &Cache{readDB: readDB, writeDB: writeDB}
	if err := c.init(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) init() error {
	_, err := c.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			article_id   TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			url          TEXT NOT NULL,
			source       TEXT NOT NULL DEFAULT '',
			tags         TEXT NOT NULL DEFAULT '',
			reading_time INTEGER NOT NULL DEFAULT 0,
			opened_at    DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_history_opened ON history(opened_at DESC);

		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	var errs []error
	if c.readDB != nil {
		errs = append(errs, c.readDB.Close())
	}
	if c.writeDB != nil {
		errs = append(errs, c.writeDB.Close())
	}
	return errors.Join(errs...)
}

// RecordOpen adds a to the reading history, or bumps it to now if it is
// already there.
func (c *Cache) RecordOpen(a api.Article) error {
	slugs := make([]string, 0, len(a.Tags))
	for _, t := range a.Tags {
		slugs = append(slugs, t.Slug)
	}
	_, err := c.writeDB.Exec(`
		INSERT INTO history (article_id, title, url, source, tags, reading_time, opened_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(article_id) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			opened_at = excluded.opened_at
	`, a.ID.String(), a.Title, a.URL, a.SourceName, strings.Join(slugs, ","), a.ReadingTimeMinutes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording article %s: %w", a.ID, err)
	}
	return nil
}

func (c *Cache) History(opts QueryOpts) ([]HistoryEntry, error) {
	var (
		where []string
		args  []any
	)

	if !opts.Since.IsZero() {
		where = append(where, "opened_at >= ?")
		args = append(args, opts.Since.UTC())
	}

	if opts.Search != "" {
		where = append(where, "(title LIKE ? OR source LIKE ? OR tags LIKE ?)")
		term := "%" + opts.Search + "%"
		args = append(args, term, term, term)
	}

	query := "SELECT article_id, title, url, source, tags, reading_time, opened_at FROM history"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY opened_at DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := c.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ArticleID, &e.Title, &e.URL, &e.Source, &e.Tags, &e.ReadingTime, &e.OpenedAt); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune removes history entries opened longer ago than retention.
func (c *Cache) Prune(retention time.Duration) (int64, error) {
	res, err := c.writeDB.Exec("DELETE FROM history WHERE opened_at < ?", time.Now().Add(-retention).UTC())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		if _, err := c.writeDB.Exec("VACUUM"); err != nil {
			return n, fmt.Errorf("vacuum: %w", err)
		}
	}
	return n, nil
}

// Stats reports the number of history entries and the database file size.
func (c *Cache) Stats(dbPath string) (int, int64, error) {
	var count int
	if err := c.readDB.QueryRow("SELECT COUNT(*) FROM history").Scan(&count); err != nil {
		return 0, 0, fmt.Errorf("counting history: %w", err)
	}
	fi, err := os.Stat(dbPath)
	if err != nil {
		return count, 0, err
	}
	return count, fi.Size(), nil
}

func (c *Cache) GetLastOpened() (time.Time, error) {
	value, ok, err := c.getMeta("last_opened")
	if err != nil {
		return time.Time{}, err
	}
	if !ok {
		return time.Time{}, errors.New("never opened")
	}
	return time.Parse(time.RFC3339, value)
}

func (c *Cache) SetLastOpened() error {
	return c.setMeta("last_opened", time.Now().Format(time.RFC3339))
}

func (c *Cache) getMeta(key string) (string, bool, error) {
	var value string
	err := c.readDB.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

func (c *Cache) setMeta(key, value string) error {
	_, err := c.writeDB.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (c *Cache) deleteMeta(keys ...string) error {
	tx, err := c.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, k := range keys {
		if _, err := tx.Exec("DELETE FROM meta WHERE key = ?", k); err != nil {
			return fmt.Errorf("deleting %s: %w", k, err)
		}
	}
	return tx.Commit()
}
