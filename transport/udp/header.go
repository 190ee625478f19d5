// Package udp implements the Cyphal UDP/IPv4 transport (spec sections 4.8 and 6): a fixed
// 24-byte header followed by payload, messages sent to a multicast group derived from the
// subject id, services sent to the destination node's unicast address.
package udp

import (
	"encoding/binary"

	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/internal/crc"
)

// headerSize is the UDP header length (spec section 3): version, priority, source/destination
// node, data specifier, transfer id, frame index/EoT, 2 bytes of vendor data, and a trailing
// CRC-16/CCITT-FALSE header check — distinct from the serial transport's CRC-32C header despite
// the identical byte budget (spec section 3 gives each transport's frame layout separately).
// Grounded on canadensis_udp's UdpHeader, which has this exact field layout.
const headerSize = 24

const (
	headerVersion          = 0
	anonymousSource uint16 = 0xFFFF
	broadcastDest   uint16 = 0xFFFF
	lastFrameBit    uint32 = 0x8000_0000

	dataSpecifierServiceFlag  uint16 = 0x8000
	dataSpecifierResponseFlag uint16 = 0x4000
)

type header struct {
	version         uint8
	priority        uint8
	sourceNode      uint16
	destinationNode uint16
	dataSpecifier   uint16
	transferID      uint64
	frameIndexEOT   uint32
	vendorData      uint16
	headerCRC       uint16
}

func headerForMessage(p cyphal.Priority, source uint16, subject cyphal.PortID, id cyphal.TransferID, frameIndex uint32, last bool) header {
	idx := frameIndex
	if last {
		idx |= lastFrameBit
	}
	return header{
		version:         headerVersion,
		priority:        uint8(p),
		sourceNode:      source,
		destinationNode: broadcastDest,
		dataSpecifier:   uint16(subject),
		transferID:      uint64(id),
		frameIndexEOT:   idx,
	}
}

func headerForService(p cyphal.Priority, source, destination uint16, service cyphal.PortID, isResponse bool, id cyphal.TransferID, frameIndex uint32, last bool) header {
	spec := uint16(service) | dataSpecifierServiceFlag
	if isResponse {
		spec |= dataSpecifierResponseFlag
	}
	idx := frameIndex
	if last {
		idx |= lastFrameBit
	}
	return header{
		version:         headerVersion,
		priority:        uint8(p),
		sourceNode:      source,
		destinationNode: destination,
		dataSpecifier:   spec,
		transferID:      uint64(id),
		frameIndexEOT:   idx,
	}
}

func (h header) isService() bool  { return h.dataSpecifier&dataSpecifierServiceFlag != 0 }
func (h header) isResponse() bool { return h.dataSpecifier&dataSpecifierResponseFlag != 0 }
func (h header) portID() cyphal.PortID {
	if h.isService() {
		return cyphal.PortID(h.dataSpecifier &^ (dataSpecifierServiceFlag | dataSpecifierResponseFlag))
	}
	return cyphal.PortID(h.dataSpecifier)
}
func (h header) isLastFrame() bool  { return h.frameIndexEOT&lastFrameBit != 0 }
func (h header) frameIndex() uint32 { return h.frameIndexEOT &^ lastFrameBit }

func (h header) marshal() [headerSize]byte {
	var buf [headerSize]byte
	buf[0] = h.version
	buf[1] = h.priority
	binary.LittleEndian.PutUint16(buf[2:4], h.sourceNode)
	binary.LittleEndian.PutUint16(buf[4:6], h.destinationNode)
	binary.LittleEndian.PutUint16(buf[6:8], h.dataSpecifier)
	binary.LittleEndian.PutUint64(buf[8:16], h.transferID)
	binary.LittleEndian.PutUint32(buf[16:20], h.frameIndexEOT)
	binary.LittleEndian.PutUint16(buf[20:22], h.vendorData)
	c := crc.New16()
	c.Block(buf[:22])
	binary.LittleEndian.PutUint16(buf[22:24], uint16(c))
	return buf
}

func parseHeader(buf []byte) (header, bool) {
	if len(buf) < headerSize {
		return header{}, false
	}
	gotCRC := binary.LittleEndian.Uint16(buf[22:24])
	c := crc.New16()
	c.Block(buf[:22])
	if uint16(c) != gotCRC {
		return header{}, false
	}
	h := header{
		version:         buf[0],
		priority:        buf[1],
		sourceNode:      binary.LittleEndian.Uint16(buf[2:4]),
		destinationNode: binary.LittleEndian.Uint16(buf[4:6]),
		dataSpecifier:   binary.LittleEndian.Uint16(buf[6:8]),
		transferID:      binary.LittleEndian.Uint64(buf[8:16]),
		frameIndexEOT:   binary.LittleEndian.Uint32(buf[16:20]),
		vendorData:      binary.LittleEndian.Uint16(buf[20:22]),
		headerCRC:       gotCRC,
	}
	return h, h.version == headerVersion
}
