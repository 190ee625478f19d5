package udp

import (
	"testing"

	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/clock"
	"github.com/samsamfire/gocyphal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUDPServiceRequestHeaderFields pins the literal header fields from spec scenario 4
// (destination port, service id, transfer id, frame index/EoT) without asserting its inconsistent datagram count
// (see DESIGN.md Open Question (d)).
func TestUDPServiceRequestHeaderFields(t *testing.T) {
	requester := &Requester{Priority: cyphal.Fast, Source: 10, MTU: 1472, nextID: map[uint16]cyphal.TransferID{42: 0x1234}}
	payload := make([]byte, 1200)
	datagrams, id := requester.Push(500, 42, payload)
	require.EqualValues(t, 0x1234, id)
	require.Len(t, datagrams, 1)

	h, body, ok := decodeDatagram(datagrams[0])
	require.True(t, ok)
	assert.True(t, h.isService())
	assert.False(t, h.isResponse())
	assert.EqualValues(t, 500, h.portID())
	assert.EqualValues(t, 0x1234, h.transferID)
	assert.EqualValues(t, 0, h.frameIndex())
	assert.True(t, h.isLastFrame())
	assert.Equal(t, payload, body)
	assert.EqualValues(t, 0x43E8, ServicePort(500, false))
}

// TestUDPMultiFrameFragmentation exercises fragmentation into more than one datagram at an MTU
// small enough to force it, with the trailing CRC-32C covering the reassembled payload.
func TestUDPMultiFrameFragmentation(t *testing.T) {
	pub := &Publisher{Priority: cyphal.Nominal, Source: 7, MTU: 40}
	payload := make([]byte, 60)
	for i := range payload {
		payload[i] = byte(i)
	}
	datagrams, id := pub.Push(100, payload)
	require.Greater(t, len(datagrams), 1)

	registry := transport.NewRegistry(0)
	_, err := registry.Subscribe(cyphal.KindMessage, 100, 128, clock.Duration(1_000_000), transport.NewMapSessionTable())
	require.NoError(t, err)
	receiver := NewReceiver(0, registry)

	now := clock.NewFake(clock.Width64).Now()
	var xfer *transport.Delivered
	for _, dg := range datagrams {
		got, err := receiver.Accept(dg, now)
		require.NoError(t, err)
		if got != nil {
			xfer = got
		}
	}
	require.NotNil(t, xfer)
	assert.Equal(t, payload, xfer.Payload)
	assert.Equal(t, id, xfer.ID)
}

func decodeDatagram(datagram []byte) (header, []byte, bool) {
	if len(datagram) < headerSize {
		return header{}, nil, false
	}
	h, ok := parseHeader(datagram[:headerSize])
	return h, datagram[headerSize:], ok
}
