package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exact(id uint32) Pair { return Pair{Mask: 0xFFFFFFFF, ID: id} }

func TestCoarsenWithinCapacityIsUnchanged(t *testing.T) {
	pairs := []Pair{exact(1), exact(2), exact(3)}
	out := Coarsen(pairs, 4)
	assert.Len(t, out, 3)
}

// TestCoarsenSuperset verifies the documented invariant: after coarsening to fewer filters
// than inputs, every originally-requested id still matches at least one resulting pair.
func TestCoarsenSuperset(t *testing.T) {
	ids := []uint32{0x100, 0x101, 0x110, 0x111, 0x200, 0x3FF}
	pairs := make([]Pair, len(ids))
	for i, id := range ids {
		pairs[i] = exact(id)
	}
	out := Coarsen(pairs, 2)
	require.Len(t, out, 2)

	for _, id := range ids {
		matched := false
		for _, p := range out {
			if p.accepts(id) {
				matched = true
				break
			}
		}
		assert.Truef(t, matched, "id %#x not covered by coarsened filter set", id)
	}
}

func TestCoarsenSingleSlot(t *testing.T) {
	pairs := []Pair{exact(1), exact(2), exact(4), exact(8)}
	out := Coarsen(pairs, 1)
	require.Len(t, out, 1)
	for _, id := range []uint32{1, 2, 4, 8} {
		assert.True(t, out[0].accepts(id))
	}
}

func TestMergePrefersClosestPair(t *testing.T) {
	// 0b00 and 0b11 differ in 2 bits, so merging them frees two bits; 0b00/0b01 and 0b01/0b11
	// each differ in 1 bit. The chosen merge must be one of the 1-bit ones, so no resulting
	// pair has more than one don't-care bit.
	a, b, c := exact(0b00), exact(0b01), exact(0b11)
	out := Coarsen([]Pair{a, b, c}, 2)
	require.Len(t, out, 2)
	for _, p := range out {
		assert.LessOrEqual(t, p.admittedBits(), 1)
	}
	for _, id := range []uint32{0b00, 0b01, 0b11} {
		matched := false
		for _, p := range out {
			if p.accepts(id) {
				matched = true
			}
		}
		assert.True(t, matched)
	}
}
