package serial

// Consistent Overhead Byte Stuffing, used to delimit serial packets with a single zero byte
// (spec section 4.7). Grounded on canadensis_serial's COBS encoder/decoder shape, reimplemented
// against Go slices rather than zerocopy buffers.

// encodeCOBS returns the COBS encoding of src: no zero byte appears in the result, and the
// caller is responsible for appending the 0x00 delimiters on each side.
func encodeCOBS(src []byte) []byte {
	if len(src) == 0 {
		return []byte{0x01}
	}
	dst := make([]byte, 0, len(src)+len(src)/254+2)
	codeIdx := len(dst)
	dst = append(dst, 0) // placeholder for the first code byte
	code := byte(1)
	for _, b := range src {
		if b == 0 {
			dst[codeIdx] = code
			codeIdx = len(dst)
			dst = append(dst, 0)
			code = 1
			continue
		}
		dst = append(dst, b)
		code++
		if code == 0xFF {
			dst[codeIdx] = code
			codeIdx = len(dst)
			dst = append(dst, 0)
			code = 1
		}
	}
	dst[codeIdx] = code
	return dst
}

// decodeCOBS reverses encodeCOBS. A code byte of 0xFF means "254 data bytes follow, no implied
// zero" (spec section 4.7: "a run of length 255 as no zero in this run, continue").
func decodeCOBS(src []byte) ([]byte, bool) {
	dst := make([]byte, 0, len(src))
	i := 0
	for i < len(src) {
		code := src[i]
		if code == 0 {
			return nil, false
		}
		i++
		n := int(code) - 1
		if i+n > len(src) {
			return nil, false
		}
		dst = append(dst, src[i:i+n]...)
		i += n
		if code != 0xFF && i < len(src) {
			dst = append(dst, 0)
		}
	}
	return dst, true
}
