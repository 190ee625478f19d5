package serial

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCOBSRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{0x11, 0x22, 0x00, 0x33},
		bytes.Repeat([]byte{0x01}, 300),
		bytes.Repeat([]byte{0x00}, 10),
	}
	for _, src := range cases {
		encoded := encodeCOBS(src)
		for _, b := range encoded {
			assert.NotZero(t, b)
		}
		decoded, ok := decodeCOBS(encoded)
		if !assert.True(t, ok) {
			continue
		}
		assert.Equal(t, src, decoded)
	}
}

func TestCOBSKnownVector(t *testing.T) {
	// Classic COBS example: 00 00 00 -> 01 01 01 01
	got := encodeCOBS([]byte{0x00, 0x00, 0x00})
	assert.Equal(t, []byte{0x01, 0x01, 0x01, 0x01}, got)
}
