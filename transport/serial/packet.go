package serial

import (
	"github.com/samsamfire/gocyphal/internal/crc"
)

// buildPacket assembles one on-wire serial packet: delimiter, COBS-escaped
// [header | payload | CRC-32C], delimiter (spec section 6, "Serial bytes on the wire").
// The trailing CRC-32C covers header+payload and is distinct from the header's own internal
// CRC over its first 20 bytes.
func buildPacket(h header, payload []byte) []byte {
	hb := h.marshal()
	blob := make([]byte, 0, headerSize+len(payload)+4)
	blob = append(blob, hb[:]...)
	blob = append(blob, payload...)
	c := crc.New32C()
	c.Block(blob)
	crcBuf := c.Bytes()
	blob = append(blob, crcBuf[:]...)

	encoded := encodeCOBS(blob)
	packet := make([]byte, 0, len(encoded)+2)
	packet = append(packet, 0x00)
	packet = append(packet, encoded...)
	packet = append(packet, 0x00)
	return packet
}

// parsePacket reverses buildPacket on the COBS-escaped body between delimiters (delimiters
// already stripped by the caller's framer). Returns the parsed header and payload.
func parsePacket(body []byte) (header, []byte, bool) {
	blob, ok := decodeCOBS(body)
	if !ok || len(blob) < headerSize+4 {
		return header{}, nil, false
	}
	payloadLen := len(blob) - headerSize - 4
	h, ok := parseHeader(blob[:headerSize])
	if !ok {
		return header{}, nil, false
	}
	payload := blob[headerSize : headerSize+payloadLen]
	var gotCRC [4]byte
	copy(gotCRC[:], blob[headerSize+payloadLen:])
	c := crc.New32C()
	c.Block(blob[:headerSize+payloadLen])
	if c.Bytes() != gotCRC {
		return header{}, nil, false
	}
	return h, payload, true
}
