package feeder

import (
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// Headline is one market-news item pulled from an RSS source, used to suggest
// generation topics.
type Headline struct {
	Title       string
	Link        string
	Source      string
	PublishedAt time.Time
}

// FetchHeadlines fetches headlines from the given RSS URL.
// If limit is greater than 0, it returns only the first limit items.
func FetchHeadlines(name, rssURL string, limit int) ([]Headline, error) {
	fp := gofeed.NewParser()
	fp.Client = &http.Client{Timeout: 15 * time.Second}

	feed, err := fp.ParseURL(rssURL)
	if err != nil {
		return nil, err
	}

	return headlinesFromFeed(name, feed, limit), nil
}

// ParseHeadlines parses an already-fetched RSS document.
func ParseHeadlines(name, raw string, limit int) ([]Headline, error) {
	feed, err := gofeed.NewParser().ParseString(raw)
	if err != nil {
		return nil, err
	}
	return headlinesFromFeed(name, feed, limit), nil
}

func headlinesFromFeed(name string, feed *gofeed.Feed, limit int) []Headline {
	var items []Headline
	for _, item := range feed.Items {
		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		items = append(items, Headline{
			Title:       item.Title,
			Link:        item.Link,
			Source:      name,
			PublishedAt: published,
		})
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return items
}
