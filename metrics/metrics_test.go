package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	FramesDropped.Reset()
	FramesDropped.WithLabelValues("can", "crc").Inc()
	FramesDropped.WithLabelValues("can", "crc").Inc()
	FramesDropped.WithLabelValues("udp", "timeout").Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(FramesDropped.WithLabelValues("can", "crc")))
	assert.Equal(t, float64(1), testutil.ToFloat64(FramesDropped.WithLabelValues("udp", "timeout")))

	DedupSwitchovers.Add(0) // registers the metric so ToFloat64 below is well-defined
	assert.Equal(t, float64(0), testutil.ToFloat64(DedupSwitchovers))
	DedupSwitchovers.Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(DedupSwitchovers))
}
