package bridge

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/tickworld/worldbridge/internal/core/event"
	"github.com/tickworld/worldbridge/internal/core/tick"
)

// Handle is owned by the goroutine that owns the world. It spawns
// background tasks and, once per world update, pumps the tick clock, the
// event channel sources, and the main-thread queue.
type Handle[W any] struct {
	world *W
	clock *tick.Clock
	bus   *event.Bus
	queue *Queue[W]
	log   *zap.Logger

	// TickPump must never run concurrently with itself; this catches a
	// violated host-loop contract and fails loudly.
	pumping atomic.Bool
}

// NewHandle builds a bridge around the given world and event bus. The
// caller's goroutine becomes the world-owning goroutine: only it may call
// TickPump and Close.
func NewHandle[W any](world *W, bus *event.Bus, log *zap.Logger) *Handle[W] {
	return &Handle[W]{
		world: world,
		clock: tick.NewClock(),
		bus:   bus,
		queue: NewQueue[W](log),
		log:   log,
	}
}

// Clock exposes the tick clock for read-side consumers.
func (h *Handle[W]) Clock() *tick.Clock { return h.clock }

// Task is the join/cancel handle for one background task. Cancelling stops
// the task's future suspension points but does not retract main-thread
// callbacks it has already enqueued.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Cancel requests cooperative cancellation via the task's context.
func (t *Task) Cancel() { t.cancel() }

// Done is closed when the task function has returned.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the task function's result. Valid only after Done is closed.
func (t *Task) Err() error { return t.err }

// Spawn starts fn as a background task with a fresh TaskContext. The task
// runs immediately and independently of the tick cadence.
func (h *Handle[W]) Spawn(fn func(ctx context.Context, tc *TaskContext[W]) error) *Task {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Task{cancel: cancel, done: make(chan struct{})}
	tc := &TaskContext[W]{clock: h.clock, queue: h.queue}

	go func() {
		defer close(t.done)
		t.err = fn(ctx, tc)
	}()
	return t
}

// TickPump performs one world update's bridge work, in order: advance the
// clock (waking sleepers), rotate the event buffers, drain every registered
// channel source, then drain the main-thread queue with exclusive world
// access. Call only from the world-owning goroutine, once per update, never
// reentrantly. Returns the new tick.
func (h *Handle[W]) TickPump() uint64 {
	if !h.pumping.CompareAndSwap(false, true) {
		panic("bridge: TickPump called concurrently")
	}
	defer h.pumping.Store(false)

	current := h.clock.Advance()
	h.bus.SwapBuffers()
	h.bus.DrainChannels()
	h.queue.DrainAll(func() *MainContext[W] {
		return &MainContext[W]{World: h.world, Tick: current}
	})
	return current
}

// Close tears the bridge down: sleepers wake with tick.ErrClosed, future
// enqueues fail with ErrWorldClosed, and pending callbacks signal their
// waiters as lost. Call from the world-owning goroutine after the last
// pump.
func (h *Handle[W]) Close() {
	h.clock.Close()
	h.queue.Close()
}
