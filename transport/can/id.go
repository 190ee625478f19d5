// Package can implements the CAN/CAN-FD Cyphal transport: 29-bit extended identifier
// encoding, the tail byte, frame-level fragmentation/reassembly, and the priority-ordered
// transmit queue (spec sections 4.4–4.6).
//
// Grounded on samsamfire/gocanopen's bus_manager.go (29-bit CAN id masking against
// golang.org/x/sys/unix constants) and pkg/sdo's segmented-transfer toggle/CRC handling,
// generalized from CANopen's function-code id layout to Cyphal's priority/anonymous/service
// layout.
package can

import "github.com/samsamfire/gocyphal"

const (
	// MaxExtendedID is the largest 29-bit CAN identifier.
	MaxExtendedID = 0x1FFFFFFF

	priorityShift = 26
	anonShift     = 25
	serviceShift  = 24
	reqRespShift  = 23
	subjectShift  = 8
	serviceIDShift = 14
	destShift     = 7

	subjectMask = 0x1FFF // 13 bits
	serviceMask = 0x1FF  // 9 bits
	nodeMask    = 0x7F   // 7 bits
)

// NodeID is a CAN node identifier in 0..=125; 126 and 127 are reserved for diagnostic tools
// (spec section 3).
type NodeID uint8

const (
	MaxNodeID      NodeID = 125
	ReservedNodeA  NodeID = 126
	ReservedNodeB  NodeID = 127
	MaxNodeIDSlots        = 128 // size of the dense node-id space, for array-backed tables
)

// Valid reports whether n is an assignable (non-reserved) CAN node id.
func (n NodeID) Valid() bool { return n <= MaxNodeID }

// Identifier is a decoded 29-bit Cyphal CAN identifier.
type Identifier struct {
	Priority    cyphal.Priority
	Anonymous   bool // messages only
	IsService   bool
	IsResponse  bool // services only
	Subject     cyphal.PortID
	Service     cyphal.PortID
	Source      NodeID
	Destination NodeID // services only
}

// EncodeMessage builds the 29-bit identifier for a message (anonymous or not), per spec
// section 4.6 and the worked example in spec section 8 scenario 1:
//
//	id = priority<<26 | anonymous<<25 | subject<<8 | source
func EncodeMessage(priority cyphal.Priority, anonymous bool, subject cyphal.PortID, source NodeID) uint32 {
	id := uint32(priority&0x7) << priorityShift
	if anonymous {
		id |= 1 << anonShift
	}
	id |= (uint32(subject) & subjectMask) << subjectShift
	id |= uint32(source) & nodeMask
	return id
}

// EncodeService builds the 29-bit identifier for a request or response.
func EncodeService(priority cyphal.Priority, isResponse bool, service cyphal.PortID, destination, source NodeID) uint32 {
	id := uint32(priority&0x7) << priorityShift
	id |= 1 << serviceShift
	if isResponse {
		id |= 1 << reqRespShift
	}
	id |= (uint32(service) & serviceMask) << serviceIDShift
	id |= (uint32(destination) & nodeMask) << destShift
	id |= uint32(source) & nodeMask
	return id
}

// Decode parses a 29-bit extended CAN identifier into its Cyphal fields.
func Decode(id uint32) Identifier {
	var out Identifier
	out.Priority = cyphal.Priority((id >> priorityShift) & 0x7)
	out.IsService = (id>>serviceShift)&1 != 0
	if out.IsService {
		out.IsResponse = (id>>reqRespShift)&1 != 0
		out.Service = cyphal.PortID((id >> serviceIDShift) & serviceMask)
		out.Destination = NodeID((id >> destShift) & nodeMask)
		out.Source = NodeID(id & nodeMask)
	} else {
		out.Anonymous = (id>>anonShift)&1 != 0
		out.Subject = cyphal.PortID((id >> subjectShift) & subjectMask)
		out.Source = NodeID(id & nodeMask)
	}
	return out
}

// Tail byte bit layout (spec section 4.6).
const (
	tailStartBit = 0x80
	tailEndBit   = 0x40
	tailToggle   = 0x20
	tailIDMask   = 0x1F
)

// TailByte packs the start/end-of-transfer flags, toggle bit, and low 5 bits of the transfer
// id into one byte, the final byte of every CAN frame's data.
func TailByte(start, end, toggle bool, id cyphal.TransferID) byte {
	var b byte
	if start {
		b |= tailStartBit
	}
	if end {
		b |= tailEndBit
	}
	if toggle {
		b |= tailToggle
	}
	b |= byte(id) & tailIDMask
	return b
}

// ParseTail unpacks a tail byte.
func ParseTail(b byte) (start, end, toggle bool, id byte) {
	return b&tailStartBit != 0, b&tailEndBit != 0, b&tailToggle != 0, b & tailIDMask
}
