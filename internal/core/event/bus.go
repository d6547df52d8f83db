package event

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// ErrDuplicateChannel is returned when a second inbound channel is
// registered for an event type that already has one. This is a setup-time
// misuse: exactly one channel source may feed each event type.
var ErrDuplicateChannel = errors.New("event channel already registered for type")

// Bus is a double-buffered typed event store, consumed once per tick by the
// game loop goroutine. Events emitted in tick N are readable in tick N+1;
// values drained from registered channel sources are readable in the tick
// they are drained. SwapBuffers() is called at tick start by the pump.
type Bus struct {
	mu       sync.Mutex // protects handler and source registration
	front    map[reflect.Type][]any
	back     map[reflect.Type][]any
	handlers map[reflect.Type][]any
	sources  map[reflect.Type]*channelSource
	order    []*channelSource
}

// channelSource adapts one inbound async channel to the bus. recv performs
// a single non-blocking receive. The draining flag exists only to catch a
// violated single-consumer contract; only the pump goroutine drains.
type channelSource struct {
	typ      reflect.Type
	recv     func() (any, bool)
	draining atomic.Bool
}

func NewBus() *Bus {
	return &Bus{
		front:    make(map[reflect.Type][]any),
		back:     make(map[reflect.Type][]any),
		handlers: make(map[reflect.Type][]any),
		sources:  make(map[reflect.Type]*channelSource),
	}
}

// Emit queues an event into the back buffer (readable next tick).
// Call only from the game loop goroutine.
func Emit[T any](b *Bus, event T) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.back[t] = append(b.back[t], event)
}

// Read returns this tick's events of type T in publish order.
// Call only from the game loop goroutine.
func Read[T any](b *Bus) []T {
	t := reflect.TypeOf((*T)(nil)).Elem()
	raw := b.front[t]
	if len(raw) == 0 {
		return nil
	}
	out := make([]T, len(raw))
	for i, ev := range raw {
		out[i] = ev.(T)
	}
	return out
}

// Subscribe registers a typed handler for events of type T, invoked by
// DispatchAll.
func Subscribe[T any](b *Bus, fn func(T)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], fn)
}

// AddChannel registers ch as the single inbound source for events of type
// T. Values are moved onto the bus by DrainChannels each tick. A second
// registration for the same type fails with ErrDuplicateChannel.
func AddChannel[T any](b *Bus, ch <-chan T) error {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.sources[t]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateChannel, t)
	}
	src := &channelSource{
		typ: t,
		recv: func() (any, bool) {
			select {
			case v, ok := <-ch:
				if !ok {
					// Closed and fully drained. Nothing more will arrive.
					return nil, false
				}
				return v, true
			default:
				return nil, false
			}
		},
	}
	b.sources[t] = src
	b.order = append(b.order, src)
	return nil
}

// DrainChannels moves every pending value from each registered channel
// source into the front buffer, in registration order per source and in
// send order within a source. Values become readable this tick. Call only
// from the game loop goroutine, once per tick.
func (b *Bus) DrainChannels() {
	b.mu.Lock()
	sources := b.order
	b.mu.Unlock()

	for _, src := range sources {
		if !src.draining.CompareAndSwap(false, true) {
			panic(fmt.Sprintf("event: concurrent drain of channel source for %s", src.typ))
		}
		for {
			v, ok := src.recv()
			if !ok {
				break
			}
			b.front[src.typ] = append(b.front[src.typ], v)
		}
		src.draining.Store(false)
	}
}

// SwapBuffers rotates back→front and clears the new back buffer.
// Called once at tick start, before DrainChannels.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front
	for k := range b.back {
		b.back[k] = b.back[k][:0]
	}
}

// DispatchAll delivers all front-buffer events to their subscribed
// handlers.
func (b *Bus) DispatchAll() {
	for t, events := range b.front {
		handlers := b.handlers[t]
		for _, ev := range events {
			for _, h := range handlers {
				// Safe: Subscribe and the publish paths use the same type key.
				callHandler(h, ev)
			}
		}
	}
}

func callHandler(handler any, event any) {
	reflect.ValueOf(handler).Call([]reflect.Value{reflect.ValueOf(event)})
}
