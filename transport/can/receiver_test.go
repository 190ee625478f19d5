package can

import (
	"testing"

	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/clock"
	"github.com/samsamfire/gocyphal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, subject cyphal.PortID) *transport.Registry {
	t.Helper()
	registry := transport.NewRegistry(0)
	_, err := registry.Subscribe(cyphal.KindMessage, subject, 32, clock.Duration(1_000_000), transport.NewMapSessionTable())
	require.NoError(t, err)
	return registry
}

// TestReceiverScenario1 round-trips spec section 8 scenario 1 through Publisher then Receiver.
func TestReceiverScenario1(t *testing.T) {
	queue := NewQueue()
	pub := NewPublisher(cyphal.Nominal, clock.Duration(1_000_000), 42, ClassicMTU, queue)
	clk := clock.NewFake(clock.Width64)

	_, err := pub.Push(7509, []byte{0xDE, 0xAD, 0xBE, 0xEF}, clk.Now())
	require.NoError(t, err)

	registry := newTestRegistry(t, 7509)
	receiver := NewReceiver(0, registry, nil)

	f, _, ok := queue.Pop()
	require.True(t, ok)

	xfer, err := receiver.Accept(f, clk.Now())
	require.NoError(t, err)
	require.NotNil(t, xfer)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, xfer.Payload)
	assert.EqualValues(t, 42, xfer.Source)
	assert.Equal(t, cyphal.Nominal, xfer.Priority)
	assert.EqualValues(t, 0, xfer.ID)
}

// TestReceiverScenario2 round-trips spec section 8 scenario 2's 3-frame transfer.
func TestReceiverScenario2(t *testing.T) {
	queue := NewQueue()
	pub := NewPublisher(cyphal.Nominal, clock.Duration(1_000_000), 42, ClassicMTU, queue)
	clk := clock.NewFake(clock.Width64)

	for i := 0; i < 5; i++ {
		_, err := pub.Push(7509, []byte{0}, clk.Now())
		require.NoError(t, err)
		_, _, _ = queue.Pop()
	}

	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte(i)
	}
	_, err := pub.Push(7509, payload, clk.Now())
	require.NoError(t, err)
	require.Equal(t, 3, queue.Len())

	registry := newTestRegistry(t, 7509)
	receiver := NewReceiver(0, registry, nil)

	var xfer *transport.Delivered
	for queue.Len() > 0 {
		f, _, _ := queue.Pop()
		got, err := receiver.Accept(f, clk.Now())
		require.NoError(t, err)
		if got != nil {
			xfer = got
		}
	}
	require.NotNil(t, xfer)
	assert.Equal(t, payload, xfer.Payload)
	assert.EqualValues(t, 5, xfer.ID)
}

// TestReceiverDropsOnToggleMismatch exercises the reassembly invariant: a duplicated or
// out-of-sequence toggle bit invalidates the session with no delivered transfer.
func TestReceiverDropsOnToggleMismatch(t *testing.T) {
	queue := NewQueue()
	pub := NewPublisher(cyphal.Nominal, clock.Duration(1_000_000), 42, ClassicMTU, queue)
	clk := clock.NewFake(clock.Width64)

	payload := make([]byte, 16)
	_, err := pub.Push(7509, payload, clk.Now())
	require.NoError(t, err)
	require.Equal(t, 3, queue.Len())

	registry := newTestRegistry(t, 7509)
	receiver := NewReceiver(0, registry, nil)

	f1, _, _ := queue.Pop()
	_, err = receiver.Accept(f1, clk.Now())
	require.NoError(t, err)

	// Replay the first frame again instead of the second: a start-of-transfer frame restarts
	// the session and completes nothing.
	got, err := receiver.Accept(f1, clk.Now())
	require.NoError(t, err)
	assert.Nil(t, got)

	_, _, _ = queue.Pop() // frame 2 is skipped, so frame 3's toggle bit is out of sequence
	f3, _, _ := queue.Pop()
	got, err = receiver.Accept(f3, clk.Now())
	require.NoError(t, err)
	assert.Nil(t, got, "final frame without its predecessor must not complete a transfer")
}
