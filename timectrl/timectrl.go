package timectrl

import (
	"fmt"
	"sync"
	"time"
)

// Clock supplies the epoch for a sweep. Orchestration code reads it once and
// passes the result down, so the sweep itself never consults a clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant until Set is called. Used for
// reproducible runs (--epoch) and tests.
type FixedClock struct {
	mu sync.RWMutex
	t  time.Time
}

// NewFixedClock constructs a FixedClock at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{t: t.UTC()}
}

// Now implements Clock.
func (c *FixedClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t.UTC()
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// epochLayouts are tried in order by ParseEpoch.
var epochLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseEpoch parses a user-supplied epoch. Values without a zone are UTC.
func ParseEpoch(s string) (time.Time, error) {
	for _, layout := range epochLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised epoch %q (want RFC3339 or YYYY-MM-DD[ HH:MM:SS])", s)
}

// FromFlag returns a FixedClock when epoch is set, otherwise the system clock.
func FromFlag(epoch string) (Clock, error) {
	if epoch == "" {
		return SystemClock{}, nil
	}
	t, err := ParseEpoch(epoch)
	if err != nil {
		return nil, err
	}
	return NewFixedClock(t), nil
}
