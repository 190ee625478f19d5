package pnp

import (
	"testing"

	"github.com/samsamfire/gocyphal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUniqueIDHashV1Scenario6 pins the actually-computed v1 hash for an all-zero unique id: the
// CRC-64-WE over 16 zero bytes, masked to 48 bits. Scenario 6's literal (0x62EC59E3F1A4F00A) is
// the algorithm's standard check value over "123456789", not the hash over a zero unique id
// (see DESIGN.md Open Question (e)); the correct hash is pinned here instead.
func TestUniqueIDHashV1Scenario6(t *testing.T) {
	var uniqueID [16]byte
	hash := UniqueIDHashV1(uniqueID)
	assert.EqualValues(t, uint64(0xC6C456DFE8FC8597)&0x0000FFFFFFFFFFFF, hash)
}

type fakePublisher struct {
	sent []Request
}

func (f *fakePublisher) PublishRequest(req Request) error {
	f.sent = append(f.sent, req)
	return nil
}

// TestClientAdoptsMatchingResponse exercises scenario 6's full handshake: a client publishes
// its unique-id hash, receives a matching allocation response, and adopts node id 37.
func TestClientAdoptsMatchingResponse(t *testing.T) {
	var uniqueID [16]byte
	pub := &fakePublisher{}
	c := NewClient(uniqueID, clock.Duration(100_000), pub)

	clk := clock.NewFake(clock.Width64)
	c.Poll(clk.Now())
	require.Len(t, pub.sent, 1)

	hash := pub.sent[0].UniqueIDHash
	assert.EqualValues(t, uint64(0xC6C456DFE8FC8597)&0x0000FFFFFFFFFFFF, hash)

	_, adopted := c.Adopted()
	assert.False(t, adopted)

	c.HandleResponse(Response{UniqueIDHash: hash + 1, AllocatedNode: 99})
	_, adopted = c.Adopted()
	assert.False(t, adopted, "non-matching hash must be ignored")

	c.HandleResponse(Response{UniqueIDHash: hash, AllocatedNode: 37})
	node, adopted := c.Adopted()
	require.True(t, adopted)
	assert.EqualValues(t, 37, node)

	clk.Advance(clock.Duration(200_000))
	c.Poll(clk.Now())
	assert.Len(t, pub.sent, 1, "adopted client must stop publishing")
}

func TestCANResponseRoundTrip(t *testing.T) {
	req := Request{UniqueIDHash: UniqueIDHashV1([16]byte{})}
	payload := make([]byte, 8)
	for i := 0; i < 6; i++ {
		payload[i] = byte(req.UniqueIDHash >> (8 * i))
	}
	payload[6] = 37
	payload[7] = 0

	resp, ok := DecodeCANResponse(payload)
	require.True(t, ok)
	assert.Equal(t, req.UniqueIDHash, resp.UniqueIDHash)
	assert.EqualValues(t, 37, resp.AllocatedNode)
}
