package mediainfo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/mikey-austin/nekotv/pkg/neko"
)

// FeedImporter expands an RSS/Atom feed into playlist items, one per entry
// with a playable enclosure or link.
type FeedImporter struct {
	http *http.Client
}

// NewFeedImporter creates a feed importer.
func NewFeedImporter(timeout time.Duration) *FeedImporter {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &FeedImporter{http: &http.Client{Timeout: timeout}}
}

// Import fetches and parses the feed, returning items in feed order.
func (f *FeedImporter) Import(ctx context.Context, feedURL string) ([]neko.VideoItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch feed: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]neko.VideoItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		mediaURL := pickEnclosure(entry)
		if mediaURL == "" {
			mediaURL = strings.TrimSpace(entry.Link)
		}
		if mediaURL == "" {
			continue
		}

		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = mediaURL
		}

		items = append(items, neko.VideoItem{
			URL:        mediaURL,
			Title:      title,
			Author:     entryAuthor(entry, feed),
			DurationMS: entryDurationMS(entry),
			Type:       neko.DetectType(mediaURL),
		})
	}
	return items, nil
}

func pickEnclosure(entry *gofeed.Item) string {
	for _, enc := range entry.Enclosures {
		if enc != nil && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

func entryAuthor(entry *gofeed.Item, feed *gofeed.Feed) string {
	if entry.Author != nil && entry.Author.Name != "" {
		return strings.TrimSpace(entry.Author.Name)
	}
	if entry.ITunesExt != nil && entry.ITunesExt.Author != "" {
		return strings.TrimSpace(entry.ITunesExt.Author)
	}
	if feed.Author != nil && feed.Author.Name != "" {
		return strings.TrimSpace(feed.Author.Name)
	}
	if feed.ITunesExt != nil && feed.ITunesExt.Author != "" {
		return strings.TrimSpace(feed.ITunesExt.Author)
	}
	return ""
}

func entryDurationMS(entry *gofeed.Item) int64 {
	if entry.ITunesExt == nil {
		return 0
	}
	raw := strings.TrimSpace(entry.ITunesExt.Duration)
	if raw == "" {
		return 0
	}
	if strings.Contains(raw, ":") {
		total := 0
		for _, part := range strings.Split(raw, ":") {
			n := 0
			fmt.Sscanf(part, "%d", &n)
			total = total*60 + n
		}
		return int64(total) * 1000
	}
	seconds := 0
	if _, err := fmt.Sscanf(raw, "%d", &seconds); err == nil {
		return int64(seconds) * 1000
	}
	return 0
}
