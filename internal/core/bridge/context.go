package bridge

import (
	"context"

	"github.com/tickworld/worldbridge/internal/core/tick"
)

// MainContext grants one main-thread callback exclusive mutable access to
// the world. It is valid only for the duration of that callback and must
// not be retained.
type MainContext[W any] struct {
	// World is the authoritative state, safe to mutate for the duration of
	// the callback.
	World *W
	// Tick is the update tick in which the callback is executing.
	Tick uint64
}

// TaskContext is the capability handle given to every background task. It
// is cheap to share: all copies reference the same clock and the same
// main-thread queue, and it carries no exclusive state.
type TaskContext[W any] struct {
	clock *tick.Clock
	queue *Queue[W]
}

// CurrentTick reads the tick counter without suspending. The world may be
// advancing concurrently, so the value can be stale by the time it is used.
func (tc *TaskContext[W]) CurrentTick() uint64 {
	return tc.clock.Current()
}

// SleepUpdates suspends the task until the clock has advanced by at least n
// from the value observed at call time. The threshold is checked against
// the elapsed delta, so the sleep completes correctly even when the clock
// advances several ticks between wake-ups, and even across counter
// wraparound. Returns tick.ErrClosed if the world tears down first, or the
// context error on cancellation.
func (tc *TaskContext[W]) SleepUpdates(ctx context.Context, n uint64) error {
	start := tc.clock.Current()
	for tc.clock.Current()-start < n {
		if err := tc.clock.WaitForChange(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RunOnMain suspends the calling task, runs fn on the game loop goroutine
// with exclusive world access, and resumes with fn's return value.
//
// Fails with ErrWorldClosed if the world is tearing down, ErrResponseLost
// if the callback was consumed without delivering a result (e.g. it
// panicked), or the context error if ctx is cancelled while waiting. A
// cancelled wait does not retract the callback: it still executes on the
// next pump and its result is discarded.
func RunOnMain[W, T any](ctx context.Context, tc *TaskContext[W], fn func(*MainContext[W]) T) (T, error) {
	var zero T
	out := make(chan T, 1)
	lost := make(chan struct{})

	err := tc.queue.Enqueue(
		func(mc *MainContext[W]) { out <- fn(mc) },
		func() { close(lost) },
	)
	if err != nil {
		return zero, err
	}

	select {
	case v := <-out:
		return v, nil
	case <-lost:
		// The result may have been delivered immediately before the lost
		// signal raced in; prefer it.
		select {
		case v := <-out:
			return v, nil
		default:
		}
		return zero, ErrResponseLost
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
