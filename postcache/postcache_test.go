package postcache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"marketpulse/models"
	"marketpulse/postcache"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{cur: time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cur
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cur = f.cur.Add(d)
}

func post(slug string) models.Post {
	return models.Post{Slug: slug, Title: slug}
}

func TestSetThenGet(t *testing.T) {
	clock := newFakeClock()
	c := postcache.NewWithClock(clock.Now)
	defer c.ClearAll()

	c.Set("banks-beat-estimates-in-q3", post("banks-beat-estimates-in-q3"), time.Minute)

	got, ok := c.Get("banks-beat-estimates-in-q3")
	assert.True(t, ok)
	assert.Equal(t, "banks-beat-estimates-in-q3", got.Slug)
}

func TestGetAfterTTLIsAbsent(t *testing.T) {
	clock := newFakeClock()
	c := postcache.NewWithClock(clock.Now)
	defer c.ClearAll()

	c.Set("rate-cut", post("rate-cut"), time.Minute)
	clock.Advance(time.Minute)

	_, ok := c.Get("rate-cut")
	assert.False(t, ok)
	// Expired entries behave exactly like never-inserted ones.
	_, ok = c.Get("rate-cut")
	assert.False(t, ok)
}

func TestOverwriteResetsTimer(t *testing.T) {
	clock := newFakeClock()
	c := postcache.NewWithClock(clock.Now)
	defer c.ClearAll()

	a := post("gold-rally")
	a.Title = "A"
	c.Set("gold-rally", a, time.Minute)

	clock.Advance(30 * time.Second)
	b := post("gold-rally")
	b.Title = "B"
	c.Set("gold-rally", b, time.Minute)

	// At the original 1m mark the fresher value must still be served.
	clock.Advance(30 * time.Second)
	got, ok := c.Get("gold-rally")
	assert.True(t, ok)
	assert.Equal(t, "B", got.Title)

	// And it still expires at its own deadline.
	clock.Advance(30 * time.Second)
	_, ok = c.Get("gold-rally")
	assert.False(t, ok)
}

func TestClearIsIdempotent(t *testing.T) {
	clock := newFakeClock()
	c := postcache.NewWithClock(clock.Now)

	c.Set("tech-selloff", post("tech-selloff"), time.Minute)
	c.Clear("tech-selloff")
	_, ok := c.Get("tech-selloff")
	assert.False(t, ok)

	// Clearing an absent slug is a no-op.
	c.Clear("tech-selloff")
	c.Clear("never-inserted")
}

func TestClearAll(t *testing.T) {
	clock := newFakeClock()
	c := postcache.NewWithClock(clock.Now)

	for i := 0; i < 5; i++ {
		slug := fmt.Sprintf("post-%d", i)
		c.Set(slug, post(slug), time.Minute)
	}
	assert.Equal(t, 5, c.Len())

	c.ClearAll()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("post-0")
	assert.False(t, ok)
}

func TestExpiryTimerFires(t *testing.T) {
	// Real clock: the background timer itself must remove the entry.
	c := postcache.New()
	defer c.ClearAll()

	c.Set("flash", post("flash"), 20*time.Millisecond)
	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestConcurrentAccess(t *testing.T) {
	clock := newFakeClock()
	c := postcache.NewWithClock(clock.Now)
	defer c.ClearAll()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			slug := fmt.Sprintf("post-%d", n%4)
			for j := 0; j < 200; j++ {
				c.Set(slug, post(slug), time.Minute)
				c.Get(slug)
				if j%50 == 0 {
					c.Clear(slug)
				}
			}
		}(i)
	}
	wg.Wait()
}
