// Package rss renders article lists as RSS 2.0 so they can be followed from
// any feed reader.
package rss

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/iAmNsengi/zyyp/internal/api"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel channelXML `xml:"channel"`
}

type channelXML struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []itemXML `xml:"item"`
}

type guidXML struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type itemXML struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description,omitempty"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
	GUID        guidXML  `xml:"guid"`
	PubDate     string   `xml:"pubDate"`
}

// Channel describes the exported feed itself.
type Channel struct {
	Title       string
	Link        string
	Description string
}

// Export writes articles as an RSS 2.0 document to w.
func Export(w io.Writer, ch Channel, articles []api.Article) error {
	items := make([]itemXML, 0, len(articles))
	for _, a := range articles {
		it := itemXML{
			Title:       a.Title,
			Link:        a.URL,
			Description: a.Summary(),
			GUID:        guidXML{Value: a.ID.String()},
			PubDate:     a.Published().UTC().Format(time.RFC1123Z),
		}
		if a.Author != nil {
			it.Author = *a.Author
		}
		for _, t := range a.Tags {
			it.Categories = append(it.Categories, t.Name)
		}
		items = append(items, it)
	}

	out := rssXML{
		Version: "2.0",
		Channel: channelXML{
			Title:         ch.Title,
			Link:          ch.Link,
			Description:   ch.Description,
			LastBuildDate: time.Now().UTC().Format(time.RFC1123Z),
			Items:         items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding rss: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
