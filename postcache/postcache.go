// Package postcache holds freshly generated posts in memory for a bounded
// window so they are servable before the durable read path catches up.
// Process-local only: multi-instance deployments do not see each other's
// entries, which is an accepted limitation.
package postcache

import (
	"sync"
	"time"

	"marketpulse/models"
)

// DefaultTTL is applied when a caller passes a non-positive TTL.
const DefaultTTL = 15 * time.Minute

type entry struct {
	post     models.Post
	deadline time.Time
	timer    *time.Timer
	gen      uint64
}

// Cache is a TTL map from slug to post. Safe for concurrent use.
// Each live slug owns exactly one pending expiry timer; overwriting a slug
// cancels the previous timer so a stale expiry can never delete a fresher
// value. The deadline check in Get is authoritative when a lookup races the
// timer callback.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	nextGen uint64

	// now is injectable so TTL behavior is testable with a fake clock.
	now func() time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// NewWithClock is New with an injected clock. Tests only.
func NewWithClock(now func() time.Time) *Cache {
	c := New()
	c.now = now
	return c
}

// Set stores post under slug for ttl. An existing entry for the same slug is
// overwritten and its pending expiry cancelled first.
func (c *Cache) Set(slug string, post models.Post, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[slug]; ok {
		old.timer.Stop()
	}

	c.nextGen++
	gen := c.nextGen
	e := &entry{
		post:     post,
		deadline: c.now().Add(ttl),
		gen:      gen,
	}
	e.timer = time.AfterFunc(ttl, func() {
		c.expire(slug, gen)
	})
	c.entries[slug] = e
}

// expire removes the entry only if it is still the generation the timer was
// armed for; a newer Set on the same slug wins.
func (c *Cache) expire(slug string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[slug]; ok && e.gen == gen {
		delete(c.entries, slug)
	}
}

// Get returns the cached post if present and not yet expired. A lookup at or
// past the deadline behaves exactly like a miss, regardless of whether the
// timer callback has run yet.
func (c *Cache) Get(slug string) (models.Post, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[slug]
	if !ok {
		return models.Post{}, false
	}
	if !c.now().Before(e.deadline) {
		e.timer.Stop()
		delete(c.entries, slug)
		return models.Post{}, false
	}
	return e.post, true
}

// Clear cancels the pending expiry and removes the entry. Idempotent on a
// missing slug.
func (c *Cache) Clear(slug string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[slug]; ok {
		e.timer.Stop()
		delete(c.entries, slug)
	}
}

// ClearAll cancels every pending timer and empties the cache. Used at
// process-lifecycle boundaries, not on request paths.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for slug, e := range c.entries {
		e.timer.Stop()
		delete(c.entries, slug)
	}
}

// Len reports the number of live entries. Entries past their deadline whose
// timer has not fired yet are still counted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
