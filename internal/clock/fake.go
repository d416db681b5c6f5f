package clock

import (
	"sync"
	"time"
)

// FakeClock serves a controllable instant, normalized to UTC the same way
// invoice numbering expects wall time. Safe for concurrent readers so tests
// can exercise competing transactions against one clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
