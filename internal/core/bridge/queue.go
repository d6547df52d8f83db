package bridge

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// call is a one-shot unit of main-thread work. run executes with exclusive
// world access. lost is invoked instead if run will never deliver a result
// (panic, or teardown before execution), so the waiting task is always
// signalled one way or the other.
type call[W any] struct {
	run  func(*MainContext[W])
	lost func()
}

// Queue is the many-producer single-consumer FIFO of deferred main-thread
// work. Enqueue never blocks; the queue is unbounded. DrainAll is called
// only by the pump goroutine.
type Queue[W any] struct {
	mu     sync.Mutex
	calls  []call[W]
	closed bool

	// Catches a violated single-consumer contract. Only the pump drains;
	// a concurrent drain is a programming error and fails loudly.
	draining atomic.Bool

	log *zap.Logger
}

func NewQueue[W any](log *zap.Logger) *Queue[W] {
	return &Queue[W]{log: log}
}

// Enqueue adds a call. Fails with ErrWorldClosed once the world is torn
// down; the lost callback is NOT invoked on that path, the caller handles
// the error directly.
func (q *Queue[W]) Enqueue(run func(*MainContext[W]), lost func()) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrWorldClosed
	}
	q.calls = append(q.calls, call[W]{run: run, lost: lost})
	return nil
}

// DrainAll executes every queued call, building a fresh MainContext per
// call via mk. Calls enqueued while draining are executed in the same
// drain. The drain is unbounded: under sustained overload a single tick's
// drain can run arbitrarily long and delay the next tick. That gap is
// deliberate (no silent load shedding); hosts needing a bound must rate
// limit producers.
func (q *Queue[W]) DrainAll(mk func() *MainContext[W]) {
	if !q.draining.CompareAndSwap(false, true) {
		panic("bridge: main-thread queue drained concurrently")
	}
	defer q.draining.Store(false)

	for {
		q.mu.Lock()
		if len(q.calls) == 0 {
			q.mu.Unlock()
			return
		}
		batch := q.calls
		q.calls = nil
		q.mu.Unlock()

		for _, c := range batch {
			q.invoke(c, mk())
		}
	}
}

// invoke runs one call, converting a panic into a lost-response signal so
// an orphaned or faulty callback never aborts the pump goroutine.
func (q *Queue[W]) invoke(c call[W], mc *MainContext[W]) {
	delivered := false
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("main-thread callback panicked",
				zap.Uint64("tick", mc.Tick),
				zap.Any("panic", r),
			)
		}
		if !delivered && c.lost != nil {
			c.lost()
		}
	}()
	c.run(mc)
	delivered = true
}

// Close rejects future enqueues and signals lost for every pending call,
// so no waiter is silently dropped.
func (q *Queue[W]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	pending := q.calls
	q.calls = nil
	q.mu.Unlock()

	for _, c := range pending {
		if c.lost != nil {
			c.lost()
		}
	}
}
