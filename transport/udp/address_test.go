package udp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServicePortScenario4(t *testing.T) {
	port := ServicePort(500, false)
	assert.EqualValues(t, 0x43E8, port)

	service, isResponse, err := ParseServicePort(port)
	assert.NoError(t, err)
	assert.EqualValues(t, 500, service)
	assert.False(t, isResponse)
}

func TestServicePortResponseBit(t *testing.T) {
	reqPort := ServicePort(7, false)
	respPort := ServicePort(7, true)
	assert.EqualValues(t, reqPort+1, respPort)
}

func TestMulticastAddressRoundTrip(t *testing.T) {
	addr := MulticastAddress(19, 7509)
	assert.True(t, IsMulticast(addr))

	unicast := NodeAddress(0x1FF, 19, 360)
	assert.False(t, IsMulticast(unicast))
}
