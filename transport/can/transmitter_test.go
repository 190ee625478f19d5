package can

import (
	"testing"

	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/clock"
	"github.com/samsamfire/gocyphal/internal/crc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPublisherScenario1 pins spec section 8 scenario 1: a single-frame Classic CAN message.
func TestPublisherScenario1(t *testing.T) {
	queue := NewQueue()
	pub := NewPublisher(cyphal.Nominal, clock.Duration(1_000_000), 42, ClassicMTU, queue)
	clk := clock.NewFake(clock.Width64)

	id, err := pub.Push(7509, []byte{0xDE, 0xAD, 0xBE, 0xEF}, clk.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 0, id)
	require.Equal(t, 1, queue.Len())

	f, _, ok := queue.Pop()
	require.True(t, ok)
	assert.Equal(t, EncodeMessage(cyphal.Nominal, false, 7509, 42), f.ID)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF, 0xE0}, f.Data)
	assert.False(t, f.FD)
}

// TestPublisherScenario2 pins spec section 8 scenario 2: a 16-byte Classic CAN message split
// into 3 frames with the toggle bit flipping and a trailing CRC-16 on the last frame.
func TestPublisherScenario2(t *testing.T) {
	queue := NewQueue()
	pub := NewPublisher(cyphal.Nominal, clock.Duration(1_000_000), 42, ClassicMTU, queue)
	clk := clock.NewFake(clock.Width64)

	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte(i)
	}

	// Force transfer id to 5 by pushing 5 throwaway single-frame transfers first.
	for i := 0; i < 5; i++ {
		_, err := pub.Push(7509, []byte{0}, clk.Now())
		require.NoError(t, err)
		_, _, _ = queue.Pop()
	}

	_, err := pub.Push(7509, payload, clk.Now())
	require.NoError(t, err)
	require.Equal(t, 3, queue.Len())

	sum := crc.CRC16Of(payload)
	sumBytes := sum.Bytes()

	f1, _, _ := queue.Pop()
	assert.Equal(t, append(append([]byte{}, payload[0:7]...), TailByte(true, false, false, 5)), f1.Data)

	f2, _, _ := queue.Pop()
	assert.Equal(t, append(append([]byte{}, payload[7:14]...), TailByte(false, false, true, 5)), f2.Data)

	f3, _, _ := queue.Pop()
	want3 := append([]byte{}, payload[14:16]...)
	want3 = append(want3, sumBytes[0], sumBytes[1])
	want3 = append(want3, TailByte(false, true, false, 5))
	assert.Equal(t, want3, f3.Data)
}
