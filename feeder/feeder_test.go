package feeder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketpulse/feeder"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Market Wire</title>
    <item>
      <title>Banks Beat Estimates in Q3</title>
      <link>https://example.com/banks-q3</link>
      <pubDate>Mon, 06 Jan 2025 09:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Oil Slides on Supply Data</title>
      <link>https://example.com/oil-supply</link>
      <pubDate>Mon, 06 Jan 2025 08:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Fed Minutes Preview</title>
      <link>https://example.com/fed-minutes</link>
    </item>
  </channel>
</rss>`

func TestParseHeadlines(t *testing.T) {
	items, err := feeder.ParseHeadlines("Market Wire", sampleRSS, 0)
	assert.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, "Banks Beat Estimates in Q3", items[0].Title)
	assert.Equal(t, "https://example.com/banks-q3", items[0].Link)
	assert.Equal(t, "Market Wire", items[0].Source)
	assert.False(t, items[0].PublishedAt.IsZero())
	// Missing pubDate yields a zero time, not an error.
	assert.True(t, items[2].PublishedAt.IsZero())
}

func TestParseHeadlinesLimit(t *testing.T) {
	items, err := feeder.ParseHeadlines("Market Wire", sampleRSS, 2)
	assert.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestParseHeadlinesInvalid(t *testing.T) {
	_, err := feeder.ParseHeadlines("bad", "not an rss document", 0)
	assert.Error(t, err)
}
