// Package pacing provides the bounded counters that keep the load and decode
// workers a fixed number of groups ahead of their consumers.
package pacing

import (
	"context"
	"sync"
)

// DefaultDepth is the default ceiling of a Counter.
const DefaultDepth = 3

// Counter is an integer clamped to [0, depth]. Increment blocks at the
// ceiling and Decrement blocks at zero. After Close neither blocks.
type Counter struct {
	units     chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a counter at zero with the given ceiling. Depths below one are
// raised to one.
func New(depth int) *Counter {
	return &Counter{
		units: make(chan struct{}, max(depth, 1)),
		done:  make(chan struct{}),
	}
}

// Increment adds one, blocking while the counter is at its ceiling.
// It reports false if the counter was closed instead.
func (c *Counter) Increment() bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.units <- struct{}{}:
		return true
	case <-c.done:
		return false
	}
}

// Decrement subtracts one, blocking while the counter is zero. Once closed,
// remaining units are still consumed; it reports false when none are left.
func (c *Counter) Decrement() bool {
	ok, _ := c.DecrementContext(context.Background()) //nolint:errcheck // background context never ends
	return ok
}

// DecrementContext is Decrement that gives up when ctx ends.
func (c *Counter) DecrementContext(ctx context.Context) (bool, error) {
	select {
	case <-c.units:
		return true, nil
	case <-c.done:
		select {
		case <-c.units:
			return true, nil
		default:
			return false, nil
		}
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Close releases every blocked caller and makes later calls non-blocking.
// It is safe to call more than once.
func (c *Counter) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Value returns the current count.
func (c *Counter) Value() int {
	return len(c.units)
}

// Depth returns the ceiling.
func (c *Counter) Depth() int {
	return cap(c.units)
}
