package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[node]
node_id = 360
filter_capacity = 4

[transport.primary]
kind = can
mtu = 64
channel = can0
redundancy = 2
timeout_ms = 2000

[transport.backup]
kind = udp
mtu = 1472
channel = 192.168.19.10:9382
subnet = 19
session_shape = array
`

func TestLoadParsesNodeAndTransports(t *testing.T) {
	cfg, err := Load([]byte(sampleConfig))
	require.NoError(t, err)

	assert.EqualValues(t, 360, cfg.NodeID)
	assert.Equal(t, 4, cfg.FilterCapacity)
	require.Len(t, cfg.Transports, 2)

	byName := map[string]TransportConfig{}
	for _, tc := range cfg.Transports {
		byName[tc.Name] = tc
	}

	primary := byName["primary"]
	assert.Equal(t, "can", primary.Kind)
	assert.Equal(t, 64, primary.MTU)
	assert.Equal(t, 2, primary.Redundancy)
	assert.EqualValues(t, 2_000_000, primary.Timeout)
	assert.Equal(t, ShapeMap, primary.Shape)

	backup := byName["backup"]
	assert.Equal(t, "udp", backup.Kind)
	assert.Equal(t, 19, backup.Subnet)
	assert.Equal(t, ShapeArray, backup.Shape)
}
