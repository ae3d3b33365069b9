package eventbus

// Topic names, managed in one place so they can be overridden by
// configuration later if needed.

const (
	TopicPostEvents = "marketpulse.post.events"
)
