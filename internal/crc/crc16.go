// Package crc implements the three integrity checks used across the Cyphal transports:
// CRC-16/CCITT-FALSE (CAN transfer CRC, UDP header CRC), CRC-32C (serial header CRC, serial and
// UDP transfer CRCs), and CRC-64-WE (node unique-id hashing for plug-and-play allocation).
//
// The incremental CRC16.Single(byte) API is carried over from the teacher
// (samsamfire/gocanopen internal/fifo.Fifo.Write, which folds bytes into a *CRC16 while
// buffering an SDO block transfer, and internal/crc/crc_test.go's CRC16(0).Single(10) fixture).
// The teacher's CANopen block-transfer CRC starts from zero (CiA 301 CRC-CCITT); Cyphal's
// CAN/UDP CRC-16 is CCITT-FALSE, which starts from 0xFFFF, so New16 seeds 0xFFFF while
// keeping the same table-free bit-shift Single implementation.
package crc

// CRC16 is a CRC-16/CCITT-FALSE accumulator (poly 0x1021, init 0xFFFF, no reflect, no
// final xor). Zero value is not valid; start from New16().
type CRC16 uint16

// New16 returns the initial CRC-16/CCITT-FALSE state.
func New16() CRC16 { return CRC16(0xFFFF) }

// Single folds one byte into the running CRC.
func (c *CRC16) Single(b byte) {
	*c ^= CRC16(b) << 8
	for i := 0; i < 8; i++ {
		if *c&0x8000 != 0 {
			*c = (*c << 1) ^ 0x1021
		} else {
			*c = *c << 1
		}
	}
}

// Block folds a byte slice into the running CRC.
func (c *CRC16) Block(data []byte) {
	for _, b := range data {
		c.Single(b)
	}
}

// Bytes returns the CRC as big-endian wire bytes (the CAN transfer CRC convention; the UDP
// header stores its CRC-16 little-endian and does not use this method).
func (c CRC16) Bytes() [2]byte {
	return [2]byte{byte(c >> 8), byte(c)}
}

// CRC16Of computes the CRC-16/CCITT-FALSE of data in one call.
func CRC16Of(data []byte) CRC16 {
	c := New16()
	c.Block(data)
	return c
}
