package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates post lifecycle events.
type EventType string

const (
	PostCreated   EventType = "post.created"
	PostUpdated   EventType = "post.updated"
	PostDeleted   EventType = "post.deleted"
	PostGenerated EventType = "post.generated"
)

// BaseEvent is the shared envelope of every event.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"` // "api", "aggregator"
	Version   string    `json:"version"`
}

func newBase(t EventType, source string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now(),
		Source:    source,
		Version:   "1",
	}
}

// PostEvent is published on every post lifecycle transition.
type PostEvent struct {
	BaseEvent
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	CategorySlug  string   `json:"category_slug"`
	Tags          []string `json:"tags,omitempty"`
	IsAiGenerated bool     `json:"is_ai_generated"`
}

func NewPostEvent(t EventType, source, slug, title, categorySlug string, tags []string, aiGenerated bool) PostEvent {
	return PostEvent{
		BaseEvent:     newBase(t, source),
		Slug:          slug,
		Title:         title,
		CategorySlug:  categorySlug,
		Tags:          tags,
		IsAiGenerated: aiGenerated,
	}
}
