package eventbus

import (
	"context"
	"encoding/json"
)

// Event is the payload written to the bus.
type Event struct {
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// EventBus abstracts event publishing. Publishing on the write paths is
// best-effort: failures are logged by callers, never surfaced to the request.
type EventBus interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close()
}

// Nop is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(ctx context.Context, topic string, event Event) error { return nil }
func (Nop) Close()                                                       {}
