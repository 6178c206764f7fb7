package rss

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iAmNsengi/zyyp/internal/api"
)

func TestExportParsesAsRSS(t *testing.T) {
	published := time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC)
	desc := "Why consensus logs matter"
	author := "Ada"
	id := uuid.New()
	articles := []api.Article{
		{
			ID:          id,
			Title:       "Raft in practice",
			URL:         "https://example.com/raft",
			Description: &desc,
			Author:      &author,
			PublishedAt: &published,
			Tags:        []api.Tag{{Name: "Distributed Systems", Slug: "distributed-systems"}},
		},
		{
			ID:        uuid.New(),
			Title:     "No date",
			URL:       "https://example.com/undated",
			CreatedAt: published.Add(-time.Hour),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, Channel{Title: "zyyp bookmarks", Link: "https://zyyp.dev"}, articles))

	feed, err := gofeed.NewParser().ParseString(buf.String())
	require.NoError(t, err)
	assert.Equal(t, "rss", feed.FeedType)
	assert.Equal(t, "zyyp bookmarks", feed.Title)
	require.Len(t, feed.Items, 2)

	first := feed.Items[0]
	assert.Equal(t, "Raft in practice", first.Title)
	assert.Equal(t, "https://example.com/raft", first.Link)
	assert.Equal(t, desc, first.Description)
	assert.Equal(t, id.String(), first.GUID)
	assert.Equal(t, []string{"Distributed Systems"}, first.Categories)
	require.NotNil(t, first.PublishedParsed)
	assert.True(t, published.Equal(*first.PublishedParsed))

	require.NotNil(t, feed.Items[1].PublishedParsed)
	assert.True(t, published.Add(-time.Hour).Equal(*feed.Items[1].PublishedParsed))
}

func TestExportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, Channel{Title: "empty"}, nil))

	feed, err := gofeed.NewParser().ParseString(buf.String())
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
}
