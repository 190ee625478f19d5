package serial

import (
	"testing"

	"github.com/samsamfire/gocyphal"
	"github.com/stretchr/testify/assert"
)

func TestHeaderMarshalParseRoundTrip(t *testing.T) {
	h := headerForService(cyphal.Fast, 360, 42, 384, false, 7, singleFrameEOT)
	buf := h.marshal()
	got, ok := parseHeader(buf[:])
	assert.True(t, ok)
	assert.Equal(t, h.sourceNode, got.sourceNode)
	assert.Equal(t, h.destinationNode, got.destinationNode)
	assert.Equal(t, h.dataSpecifier, got.dataSpecifier)
	assert.Equal(t, h.transferID, got.transferID)
	assert.True(t, got.isService())
	assert.False(t, got.isResponse())
	assert.EqualValues(t, 384, got.portID())
}

func TestHeaderCorruptCRCRejected(t *testing.T) {
	h := headerForMessage(cyphal.Nominal, 10, 100, 0, singleFrameEOT)
	buf := h.marshal()
	buf[0] ^= 0xFF
	_, ok := parseHeader(buf[:])
	assert.False(t, ok)
}
