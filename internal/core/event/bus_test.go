package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type telemetry struct {
	Source string
	Value  int
}

type spawnRequest struct {
	Name string
}

func TestEmitReadableNextTick(t *testing.T) {
	b := NewBus()
	Emit(b, telemetry{Source: "a", Value: 1})

	require.Empty(t, Read[telemetry](b), "back-buffer events must not be readable this tick")

	b.SwapBuffers()
	got := Read[telemetry](b)
	require.Len(t, got, 1)
	assert.Equal(t, telemetry{Source: "a", Value: 1}, got[0])

	b.SwapBuffers()
	assert.Empty(t, Read[telemetry](b), "events live for exactly one tick")
}

func TestAddChannelDuplicateRejected(t *testing.T) {
	b := NewBus()
	ch1 := make(chan telemetry)
	ch2 := make(chan telemetry)

	require.NoError(t, AddChannel(b, ch1))
	err := AddChannel(b, ch2)
	require.ErrorIs(t, err, ErrDuplicateChannel)
}

func TestDistinctTypesDrainIndependently(t *testing.T) {
	b := NewBus()
	tch := make(chan telemetry, 4)
	sch := make(chan spawnRequest, 4)
	require.NoError(t, AddChannel(b, tch))
	require.NoError(t, AddChannel(b, sch))

	tch <- telemetry{Value: 7}
	sch <- spawnRequest{Name: "drone"}
	sch <- spawnRequest{Name: "probe"}

	b.SwapBuffers()
	b.DrainChannels()

	require.Len(t, Read[telemetry](b), 1)
	names := Read[spawnRequest](b)
	require.Len(t, names, 2)
	assert.Equal(t, "drone", names[0].Name)
	assert.Equal(t, "probe", names[1].Name)
}

func TestDrainPublishesInSendOrder(t *testing.T) {
	b := NewBus()
	ch := make(chan telemetry, 8)
	require.NoError(t, AddChannel(b, ch))

	for i := 1; i <= 3; i++ {
		ch <- telemetry{Value: i}
	}

	b.SwapBuffers()
	b.DrainChannels()
	got := Read[telemetry](b)
	require.Len(t, got, 3)
	for i, ev := range got {
		assert.Equal(t, i+1, ev.Value)
	}

	// A subsequent drain with no new values publishes nothing.
	b.SwapBuffers()
	b.DrainChannels()
	assert.Empty(t, Read[telemetry](b))
}

func TestDrainStopsAtClosedChannel(t *testing.T) {
	b := NewBus()
	ch := make(chan telemetry, 2)
	require.NoError(t, AddChannel(b, ch))

	ch <- telemetry{Value: 1}
	close(ch)

	b.SwapBuffers()
	b.DrainChannels()
	require.Len(t, Read[telemetry](b), 1, "values sent before close still arrive")

	// Draining a closed, empty channel publishes nothing and does not spin.
	b.SwapBuffers()
	b.DrainChannels()
	assert.Empty(t, Read[telemetry](b))
}

func TestDispatchAllDeliversToSubscribers(t *testing.T) {
	b := NewBus()
	var seen []int
	Subscribe(b, func(ev telemetry) {
		seen = append(seen, ev.Value)
	})

	Emit(b, telemetry{Value: 1})
	Emit(b, telemetry{Value: 2})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, []int{1, 2}, seen)
}
