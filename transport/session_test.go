package transport

import (
	"testing"

	"github.com/samsamfire/gocyphal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArraySessionTable(t *testing.T) {
	tbl := NewArraySessionTable(4)
	assert.Nil(t, tbl.Get(1))

	s := &Session{}
	tbl.Set(1, s)
	assert.Same(t, s, tbl.Get(1))

	tbl.Delete(1)
	assert.Nil(t, tbl.Get(1))

	// out-of-range source ids are silently ignored, not a panic, matching a fixed-capacity
	// constrained-target table.
	tbl.Set(100, s)
	assert.Nil(t, tbl.Get(100))
}

func TestMapSessionTableRange(t *testing.T) {
	tbl := NewMapSessionTable()
	tbl.Set(1, &Session{})
	tbl.Set(2, &Session{})

	seen := map[uint16]bool{}
	tbl.Range(func(source uint16, s *Session) bool {
		seen[source] = true
		return true
	})
	assert.Len(t, seen, 2)
	assert.True(t, seen[1] && seen[2])
}

func TestEvictExpired(t *testing.T) {
	tbl := NewMapSessionTable()
	clk := clock.NewFake(clock.Width64)
	start := clk.Now()

	tbl.Set(1, NewSession(0, 0, start, 8))
	clk.Advance(clock.Duration(2_000_000))
	tbl.Set(2, NewSession(0, 0, clk.Now(), 8))

	evicted := EvictExpired(tbl, clk.Now(), clock.Duration(1_000_000))
	require.Equal(t, 1, evicted)
	assert.Nil(t, tbl.Get(1))
	assert.NotNil(t, tbl.Get(2))
}
