package blink

import "time"

// Clock reports time elapsed since an arbitrary fixed origin.
type Clock interface {
	Now() time.Duration
}

type MonotonicClock struct {
	origin time.Time
}

func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{origin: time.Now()}
}

func (c *MonotonicClock) Now() time.Duration {
	return time.Since(c.origin)
}

// ManualClock only moves when told to.
type ManualClock struct {
	now time.Duration
}

func (c *ManualClock) Now() time.Duration {
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.now += d
}

func (c *ManualClock) Set(now time.Duration) {
	c.now = now
}
