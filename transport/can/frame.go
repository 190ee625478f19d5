package can

// Frame is one CAN or CAN-FD frame: a 29-bit extended identifier plus up to 8 (Classic) or 64
// (FD) bytes of data, the last of which is always the tail byte (spec section 4.6).
type Frame struct {
	ID   uint32
	Data []byte
	FD   bool
}

// ClassicMTU and FDMTU are the maximum frame payload sizes (including the tail byte) for each
// medium, per spec section 2.
const (
	ClassicMTU = 8
	FDMTU      = 64
)

// fdLengths are the only valid CAN-FD data lengths (spec section 4.6); frame assembly always
// rounds a needed length up to one of these.
var fdLengths = [...]int{1, 2, 3, 4, 5, 6, 7, 8, 12, 16, 20, 24, 32, 48, 64}

// RoundUpFD returns the smallest valid CAN-FD frame length >= n, or 0 if n exceeds FDMTU.
func RoundUpFD(n int) int {
	for _, l := range fdLengths {
		if l >= n {
			return l
		}
	}
	return 0
}

// PadFD pads data with zero bytes up to the next valid CAN-FD length, per spec section 4.6
// ("padding is included in the transfer CRC computation" — callers must pad before computing
// the transfer CRC, not after).
func PadFD(data []byte) []byte {
	target := RoundUpFD(len(data))
	if target == 0 || target == len(data) {
		return data
	}
	out := make([]byte, target)
	copy(out, data)
	return out
}
