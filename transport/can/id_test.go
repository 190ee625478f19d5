package can

import (
	"testing"

	"github.com/samsamfire/gocyphal"
	"github.com/stretchr/testify/assert"
)

// TestEncodeMessageScenario1 pins spec section 8 scenario 1's literal identifier and tail byte.
func TestEncodeMessageScenario1(t *testing.T) {
	id := EncodeMessage(cyphal.Nominal, false, 7509, 42)
	want := uint32(cyphal.Nominal)<<26 | 7509<<8 | 42
	assert.Equal(t, want, id)

	decoded := Decode(id)
	assert.False(t, decoded.IsService)
	assert.False(t, decoded.Anonymous)
	assert.EqualValues(t, 7509, decoded.Subject)
	assert.EqualValues(t, 42, decoded.Source)
	assert.Equal(t, cyphal.Nominal, decoded.Priority)

	tail := TailByte(true, true, true, 0)
	assert.Equal(t, byte(0b111_00000), tail)
}

func TestEncodeServiceRoundTrip(t *testing.T) {
	id := EncodeService(cyphal.High, true, 384, 42, 360%128)
	decoded := Decode(id)
	assert.True(t, decoded.IsService)
	assert.True(t, decoded.IsResponse)
	assert.EqualValues(t, 384, decoded.Service)
	assert.EqualValues(t, 42, decoded.Destination)
}

func TestTailByteRoundTrip(t *testing.T) {
	b := TailByte(false, true, true, 0x1D)
	start, end, toggle, id := ParseTail(b)
	assert.False(t, start)
	assert.True(t, end)
	assert.True(t, toggle)
	assert.EqualValues(t, 0x1D, id)
}

func TestNodeIDValid(t *testing.T) {
	assert.True(t, NodeID(0).Valid())
	assert.True(t, MaxNodeID.Valid())
	assert.False(t, ReservedNodeA.Valid())
	assert.False(t, ReservedNodeB.Valid())
}
