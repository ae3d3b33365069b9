package dto

import "time"

// HeadlineDTO is one market-news headline from an RSS feed or the MarketAux
// API, offered to editors as a generation topic.
type HeadlineDTO struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}
