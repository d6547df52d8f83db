package tick

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrClosed is reported by WaitForChange when the clock is torn down while
// a waiter is suspended. Waiters must treat it as an early wake, not as a
// completed wait.
var ErrClosed = errors.New("tick clock closed")

// Clock counts elapsed world updates. The counter is written only by the
// game loop goroutine via Advance; any goroutine may read it at any time.
//
// Change notification is coalescing: every Advance wakes all current
// waiters, but a waiter that checks late only ever observes the latest
// value. The counter wraps on overflow; callers compare elapsed deltas,
// never absolute targets.
type Clock struct {
	ticks atomic.Uint64

	mu     sync.Mutex
	notify chan struct{}
	closed bool
}

func NewClock() *Clock {
	return &Clock{notify: make(chan struct{})}
}

// Current returns the tick counter. The value may already be stale by the
// time the caller uses it.
func (c *Clock) Current() uint64 {
	return c.ticks.Load()
}

// Advance increments the counter and wakes every waiter. Only the game
// loop goroutine may call it. Returns the new tick value.
func (c *Clock) Advance() uint64 {
	next := c.ticks.Add(1)
	c.mu.Lock()
	if !c.closed {
		close(c.notify)
		c.notify = make(chan struct{})
	}
	c.mu.Unlock()
	return next
}

// WaitForChange blocks until the first Advance that happens after this call
// began. Returns ErrClosed if the clock is torn down, or the context error
// if ctx is cancelled first.
func (c *Clock) WaitForChange(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	ch := c.notify
	c.mu.Unlock()

	select {
	case <-ch:
	case <-ctx.Done():
		return ctx.Err()
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return nil
}

// Close wakes all waiters with ErrClosed. Further Advance calls still
// increment the counter but notify nobody.
func (c *Clock) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.notify)
	}
	c.mu.Unlock()
}
