package crc

import "hash/crc32"

var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C is the running state of a CRC-32C (Castagnoli) accumulator, used for the serial
// header/transfer CRC and the UDP transfer CRC (spec section 4.7/4.8). Built on the standard
// library's crc32 package with the Castagnoli table; no third-party CRC-32C implementation
// appears anywhere in the retrieval pack, and the stdlib table already does the heavy lifting.
type CRC32C struct {
	state uint32
}

// New32C returns the initial CRC-32C state.
func New32C() CRC32C { return CRC32C{state: 0} }

// Block folds data into the running CRC.
func (c *CRC32C) Block(data []byte) {
	c.state = crc32.Update(c.state, castagnoliTable, data)
}

// Sum returns the current CRC value.
func (c CRC32C) Sum() uint32 { return c.state }

// Bytes returns the CRC as little-endian wire bytes (Cyphal serial/UDP convention).
func (c CRC32C) Bytes() [4]byte {
	v := c.state
	return [4]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// CRC32COf computes the CRC-32C of data in one call.
func CRC32COf(data []byte) uint32 {
	var c CRC32C
	c.Block(data)
	return c.Sum()
}
