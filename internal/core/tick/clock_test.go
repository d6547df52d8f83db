package tick

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceIncrements(t *testing.T) {
	c := NewClock()
	require.EqualValues(t, 0, c.Current())
	require.EqualValues(t, 1, c.Advance())
	require.EqualValues(t, 2, c.Advance())
	require.EqualValues(t, 2, c.Current())
}

func TestCurrentMonotonicAcrossGoroutines(t *testing.T) {
	c := NewClock()
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			last := uint64(0)
			for {
				select {
				case <-done:
					return
				default:
				}
				cur := c.Current()
				assert.GreaterOrEqual(t, cur, last)
				last = cur
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		c.Advance()
	}
	close(done)
	wg.Wait()
}

func TestWaitForChangeWakesOnAdvance(t *testing.T) {
	c := NewClock()
	woke := make(chan error, 1)
	started := make(chan struct{})

	go func() {
		close(started)
		woke <- c.WaitForChange(context.Background())
	}()

	<-started
	time.Sleep(10 * time.Millisecond) // let the waiter block
	c.Advance()

	select {
	case err := <-woke:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("waiter not woken by Advance")
	}
}

func TestWaitForChangeSeesOnlyLatest(t *testing.T) {
	// A waiter that subscribes after several advances must not observe a
	// backlog: a single further Advance wakes it exactly once.
	c := NewClock()
	for i := 0; i < 5; i++ {
		c.Advance()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	// No Advance after the call began: the wait must time out rather than
	// be satisfied by a past tick.
	err := c.WaitForChange(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitForChangeContextCancel(t *testing.T) {
	c := NewClock()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.WaitForChange(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCloseWakesWaiters(t *testing.T) {
	c := NewClock()
	woke := make(chan error, 2)

	for i := 0; i < 2; i++ {
		go func() {
			woke <- c.WaitForChange(context.Background())
		}()
	}

	time.Sleep(10 * time.Millisecond)
	c.Close()

	for i := 0; i < 2; i++ {
		select {
		case err := <-woke:
			require.ErrorIs(t, err, ErrClosed)
		case <-time.After(time.Second):
			t.Fatal("waiter not woken by Close")
		}
	}

	// Waits after teardown fail immediately.
	require.ErrorIs(t, c.WaitForChange(context.Background()), ErrClosed)
}

func TestCloseIdempotent(t *testing.T) {
	c := NewClock()
	c.Close()
	c.Close()
	require.ErrorIs(t, c.WaitForChange(context.Background()), ErrClosed)
}
