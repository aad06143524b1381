// Package clock provides the time source shared by the session grace
// windows and the scheduler, so tests can drive time explicitly.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Test is a manually advanced clock.
type Test struct {
	mu  sync.Mutex
	now time.Time
}

func NewTest() *Test {
	return NewTestAt(time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC))
}

func NewTestAt(t time.Time) *Test {
	return &Test{now: t}
}

func (c *Test) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// FastForward advances the clock by d and returns the new time.
func (c *Test) FastForward(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// OrSystem returns c, or the wall clock when c is nil.
func OrSystem(c Clock) Clock {
	if c == nil {
		return System{}
	}
	return c
}
