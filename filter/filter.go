// Package filter implements the hardware acceptance-filter coarsening helper of spec section
// 4.12: given more (mask, id) acceptance pairs than a CAN controller's filter bank can hold,
// merge pairs together until the set fits, while still accepting every originally-requested id.
//
// Grounded on samsamfire/gocanopen's pkg/can.BusManager subscriber index, which keys
// subscriptions by (mask, id) pairs over 29-bit CAN identifiers; this package operates on the
// same pair shape but solves the orthogonal problem of fitting an oversized subscription set
// into a fixed number of hardware filter slots.
package filter

import "math/bits"

// Pair is one hardware acceptance filter: a frame with identifier id matches iff
// (identifier & mask) == (id & mask). Bits clear in mask are "don't care".
type Pair struct {
	Mask uint32
	ID   uint32
}

// accepts reports whether identifier matches p.
func (p Pair) accepts(identifier uint32) bool {
	return identifier&p.Mask == p.ID&p.Mask
}

// admittedBits returns the number of don't-care bits in the pair (32 - popcount(mask)); the pair
// accepts 2^admittedBits identifiers. Only used relatively (for greedy comparison), so
// returning the exponent avoids overflow for a fully-wildcard mask.
func (p Pair) admittedBits() int {
	return 32 - bits.OnesCount32(p.Mask)
}

// merge returns the pair that is the union of a and b: don't-care wherever either pair
// disagrees (was already don't-care, or their id bits differ), matching neither's XOR as
// don't-care rule from spec section 4.12 ("bitwise OR of their XOR as don't-cares").
func merge(a, b Pair) Pair {
	mask := a.Mask & b.Mask &^ (a.ID ^ b.ID)
	return Pair{Mask: mask, ID: a.ID & mask}
}

// additionalAdmitted estimates how many extra identifiers merging a and b would newly admit
// beyond what a and b already separately admit — the greedy cost spec section 4.12 minimizes.
// Exact set-difference cardinality is exponential in the number of don't-care bits for a
// useful upper bound without enumerating the address space; the bit-count proxy below ranks
// candidate merges consistently with it, since admittedBits is monotonic in set size and a
// wider resulting don't-care mask always admits no fewer ids than either input.
func additionalAdmitted(a, b Pair) int {
	return merge(a, b).admittedBits() - max(a.admittedBits(), b.admittedBits())
}

// Coarsen reduces pairs to at most k filters, repeatedly merging the two pairs whose union
// admits the fewest additional identifiers, per spec section 4.12's greedy algorithm. The
// result is a superset acceptance: every originally-requested id still matches some returned
// pair, though the returned filters may also accept extra ids the caller must otherwise
// discard in software. Terminates in len(pairs)-k merge steps.
func Coarsen(pairs []Pair, k int) []Pair {
	if k <= 0 {
		k = 1
	}
	set := append([]Pair(nil), pairs...)
	for len(set) > k {
		bi, bj, bestCost := -1, -1, -1
		for i := 0; i < len(set); i++ {
			for j := i + 1; j < len(set); j++ {
				cost := additionalAdmitted(set[i], set[j])
				if bestCost == -1 || cost < bestCost {
					bi, bj, bestCost = i, j, cost
				}
			}
		}
		merged := merge(set[bi], set[bj])
		next := make([]Pair, 0, len(set)-1)
		for idx, p := range set {
			if idx == bi || idx == bj {
				continue
			}
			next = append(next, p)
		}
		next = append(next, merged)
		set = next
	}
	return set
}
