package serial

import (
	"encoding/binary"

	"github.com/samsamfire/gocyphal"
	"github.com/samsamfire/gocyphal/internal/crc"
)

// headerSize is the fixed serial header length (spec section 4.7): version, priority,
// source/destination node, data specifier, transfer id, frame index/EoT, and a trailing
// CRC-32C over the first 20 bytes ("header CRC-32C" in spec section 3's frame layout list).
// The UDP transport (transport/udp) uses the same 24-byte budget but a different tail: a
// 2-byte vendor field and a CRC-16 header check, per spec section 3's UDP frame description —
// the two transports are NOT wire-compatible despite sharing a byte count. Grounded on
// canadensis_serial's SerialHeader field set, trimmed of its 8-byte padding field to fit the
// spec's 24-byte budget exactly.
const headerSize = 24

const (
	headerVersion          = 0
	anonymousSource uint16 = 0xFFFF
	broadcastDest   uint16 = 0xFFFF
	singleFrameEOT  uint32 = 0x8000_0000

	dataSpecifierServiceFlag  uint16 = 0x8000
	dataSpecifierResponseFlag uint16 = 0x4000
)

// header mirrors the 24-byte on-wire serial header.
type header struct {
	version         uint8
	priority        uint8
	sourceNode      uint16
	destinationNode uint16
	dataSpecifier   uint16
	transferID      uint64
	frameIndexEOT   uint32
	headerCRC       uint32
}

func headerForMessage(p cyphal.Priority, source uint16, subject cyphal.PortID, id cyphal.TransferID, frameIndexEOT uint32) header {
	return header{
		version:         headerVersion,
		priority:        uint8(p),
		sourceNode:      source,
		destinationNode: broadcastDest,
		dataSpecifier:   uint16(subject),
		transferID:      uint64(id),
		frameIndexEOT:   frameIndexEOT,
	}
}

func headerForService(p cyphal.Priority, source, destination uint16, service cyphal.PortID, isResponse bool, id cyphal.TransferID, frameIndexEOT uint32) header {
	spec := uint16(service) | dataSpecifierServiceFlag
	if isResponse {
		spec |= dataSpecifierResponseFlag
	}
	return header{
		version:         headerVersion,
		priority:        uint8(p),
		sourceNode:      source,
		destinationNode: destination,
		dataSpecifier:   spec,
		transferID:      uint64(id),
		frameIndexEOT:   frameIndexEOT,
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
func (h header) isSingleFrame() bool { return h.frameIndexEOT == singleFrameEOT }
func (h header) isLastFrame() bool   { return h.frameIndexEOT&singleFrameEOT != 0 }
func (h header) frameIndex() uint32  { return h.frameIndexEOT &^ singleFrameEOT }

// marshal writes the 24-byte little-endian encoding of h, computing and filling headerCRC
// over the first 20 bytes.
func (h header) marshal() [headerSize]byte {
	var buf [headerSize]byte
	buf[0] = h.version
	buf[1] = h.priority
	binary.LittleEndian.PutUint16(buf[2:4], h.sourceNode)
	binary.LittleEndian.PutUint16(buf[4:6], h.destinationNode)
	binary.LittleEndian.PutUint16(buf[6:8], h.dataSpecifier)
	binary.LittleEndian.PutUint64(buf[8:16], h.transferID)
	binary.LittleEndian.PutUint32(buf[16:20], h.frameIndexEOT)
	c := crc.CRC32COf(buf[:20])
	binary.LittleEndian.PutUint32(buf[20:24], c)
	return buf
}

func parseHeader(buf []byte) (header, bool) {
	if len(buf) < headerSize {
		return header{}, false
	}
	gotCRC := binary.LittleEndian.Uint32(buf[20:24])
	if crc.CRC32COf(buf[:20]) != gotCRC {
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
		headerCRC:       gotCRC,
	}
	return h, h.version == headerVersion
}
