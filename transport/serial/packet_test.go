package serial

import (
	"testing"

	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/clock"
	"github.com/samsamfire/gocyphal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSerialLoopbackRequestResponse pins spec scenario 3: local node 360, destination 42,
// service 384, a 3-byte request. The receiver must report priority Fast, echo the transfer id,
// and return the payload unchanged.
func TestSerialLoopbackRequestResponse(t *testing.T) {
	requester := NewRequester(cyphal.Fast, 360)
	payload := []byte{0x01, 0x02, 0x03}
	packet, id := requester.Push(384, 42, payload)

	assert.Equal(t, byte(0x00), packet[0])
	assert.Equal(t, byte(0x00), packet[len(packet)-1])

	registry := transport.NewRegistry(0)
	registry.SetLocalNodeAnonymous(false)
	_, err := registry.Subscribe(cyphal.KindRequest, 384, 64, clock.Duration(1_000_000), transport.NewMapSessionTable())
	require.NoError(t, err)

	receiver := NewReceiver(42, registry)
	body := packet[1 : len(packet)-1]
	now := clock.NewFake(clock.Width64).Now()
	xfer, err := receiver.Accept(body, now)
	require.NoError(t, err)
	require.NotNil(t, xfer)

	assert.Equal(t, cyphal.KindRequest, xfer.Kind)
	assert.Equal(t, cyphal.Fast, xfer.Priority)
	assert.Equal(t, id, xfer.ID)
	assert.Equal(t, payload, xfer.Payload)
	assert.EqualValues(t, 360, xfer.Source)
	assert.EqualValues(t, 42, xfer.Destination)
}

func TestSerialAnonymousMessage(t *testing.T) {
	pub := &Publisher{Priority: cyphal.Nominal, Source: anonymousSource}
	packet, id := pub.Push(100, []byte{0xAA})
	body := packet[1 : len(packet)-1]

	registry := transport.NewRegistry(0)
	_, err := registry.Subscribe(cyphal.KindMessage, 100, 64, clock.Duration(1_000_000), transport.NewMapSessionTable())
	require.NoError(t, err)

	receiver := NewReceiver(anonymousSource, registry)
	xfer, err := receiver.Accept(body, clock.NewFake(clock.Width64).Now())
	require.NoError(t, err)
	require.NotNil(t, xfer)
	assert.Equal(t, cyphal.NoNode, xfer.Source)
	assert.Equal(t, id, xfer.ID)
}
