package clock

import "time"

// Clock abstracts wall-clock reads so debounce and TTL logic can be
// tested deterministically.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// System implements Clock using the system time.
type System struct{}

// Now returns the current system time.
func (System) Now() time.Time { return time.Now() }

// Fake implements Clock with a controllable time for testing.
type Fake struct {
	current time.Time
}

// NewFake creates a Fake clock pinned to the given time.
func NewFake(t time.Time) *Fake {
	return &Fake{current: t}
}

// Now returns the pinned time.
func (c *Fake) Now() time.Time { return c.current }

// Set pins the clock to t.
func (c *Fake) Set(t time.Time) { c.current = t }

// Advance moves the pinned time forward by d.
func (c *Fake) Advance(d time.Duration) { c.current = c.current.Add(d) }
