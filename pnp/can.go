package pnp

import (
	"encoding/binary"

	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/clock"
	"github.com/samsamfire/gocyphal/transport/can"
)

// Subject is the fixed subject id the PnP request/response exchange runs on.
const Subject cyphal.PortID = 8166

// CANPublisher adapts an anonymous CAN publisher to the pnp.Publisher interface, encoding a
// Request as its 6-byte unique-id hash (little-endian, per the v1 wire format).
type CANPublisher struct {
	Anon    *can.AnonymousPublisher
	MTU     int
	Timeout clock.Duration
	Now     func() clock.Instant
}

func (p *CANPublisher) PublishRequest(req Request) error {
	payload := make([]byte, 6)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], req.UniqueIDHash)
	copy(payload, buf[:6])
	return p.Anon.Publish(cyphal.Exceptional, Subject, payload, p.MTU, p.Timeout, p.Now())
}

// DecodeCANResponse parses a single-frame PnP allocation response payload (6-byte unique-id
// hash little-endian, followed by a 2-byte allocated node id little-endian), per the v1 format
// pinned by spec section 8 scenario 6.
func DecodeCANResponse(payload []byte) (Response, bool) {
	if len(payload) < 8 {
		return Response{}, false
	}
	var buf [8]byte
	copy(buf[:6], payload[:6])
	hash := binary.LittleEndian.Uint64(buf[:]) & 0x0000FFFFFFFFFFFF
	node := binary.LittleEndian.Uint16(payload[6:8])
	return Response{UniqueIDHash: hash, AllocatedNode: node}, true
}
