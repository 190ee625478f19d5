package transport

import (
	"testing"

	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrySubscribeLookupUnsubscribe(t *testing.T) {
	r := NewRegistry(0)
	r.SetLocalNodeAnonymous(false)

	sub, err := r.Subscribe(cyphal.KindMessage, 100, 64, clock.Duration(1_000_000), NewMapSessionTable())
	require.NoError(t, err)
	require.NotNil(t, sub)

	assert.Same(t, sub, r.Lookup(cyphal.KindMessage, 100))
	assert.Nil(t, r.Lookup(cyphal.KindMessage, 200))
	assert.Equal(t, 1, r.Len(cyphal.KindMessage))

	r.Unsubscribe(cyphal.KindMessage, 100)
	assert.Nil(t, r.Lookup(cyphal.KindMessage, 100))
}

// TestRegistryRefusesServiceWhileAnonymous pins spec section 4.2: an anonymous node may not
// register request/response subscriptions.
func TestRegistryRefusesServiceWhileAnonymous(t *testing.T) {
	r := NewRegistry(0)
	_, err := r.Subscribe(cyphal.KindRequest, 10, 64, clock.Duration(1_000_000), NewMapSessionTable())
	assert.ErrorIs(t, err, cyphal.ErrAnonymous)

	r.SetLocalNodeAnonymous(false)
	_, err = r.Subscribe(cyphal.KindRequest, 10, 64, clock.Duration(1_000_000), NewMapSessionTable())
	assert.NoError(t, err)
}

func TestRegistryCapacityLimit(t *testing.T) {
	r := NewRegistry(1)
	_, err := r.Subscribe(cyphal.KindMessage, 1, 64, clock.Duration(1_000_000), NewMapSessionTable())
	require.NoError(t, err)

	_, err = r.Subscribe(cyphal.KindMessage, 2, 64, clock.Duration(1_000_000), NewMapSessionTable())
	assert.ErrorIs(t, err, cyphal.ErrOutOfMemory)

	// Re-subscribing an existing port is idempotent, not a new slot.
	_, err = r.Subscribe(cyphal.KindMessage, 1, 128, clock.Duration(1_000_000), NewMapSessionTable())
	assert.NoError(t, err)
}
