package udp

import (
	"fmt"
	"net"

	"github.com/samsamfire/gocyphal"
)

// Address encoding grounded on canadensis_udp/src/address.rs: a subnet 7-bit field, a 9-bit
// prefix, and a 16-bit node id compose a unicast IPv4 address; the fixed multicast prefix
// `11101111 0_______` plus subnet and subject id compose a message multicast group (spec
// section 4.8). Reimplemented against net.IP rather than a bespoke Address enum.
const (
	// multicastBase/multicastMask: top 9 bits fixed at 1_1101_1110 (binary 111011110), bits
	// 15..13 fixed at zero (the subject id occupies only the low 13 bits); subnet (bits 22..16)
	// and subject (bits 12..0) are free. Values taken from canadensis_udp's
	// MULTICAST_BASE/MULTICAST_MASK constants.
	multicastBase uint32 = 0xEF000000
	multicastMask uint32 = 0xFF80E000

	prefixShift = 23
	prefixMax   = 0x1FF
	subnetShift = 16
	subnetMax   = 0x7F

	// SubjectPort is the fixed UDP destination port for all message transfers.
	SubjectPort uint16 = 16383

	serviceBasePort uint16 = 0x4000
)

// NodeAddress returns the unicast IPv4 address for a node, given the network's 9-bit prefix and
// 7-bit subnet.
func NodeAddress(prefix uint16, subnet uint8, node uint16) net.IP {
	bits := (uint32(prefix&prefixMax) << prefixShift) | (uint32(subnet&subnetMax) << subnetShift) | uint32(node)
	return ipFromUint32(bits)
}

// MulticastAddress returns the multicast group address for messages published on subject,
// within the given subnet.
func MulticastAddress(subnet uint8, subject cyphal.PortID) net.IP {
	bits := multicastBase | (uint32(subnet&subnetMax) << subnetShift) | uint32(subject)
	return ipFromUint32(bits)
}

// IsMulticast reports whether ip is a Cyphal/UDP message multicast address, per the fixed
// 9-bit prefix `111011110`.
func IsMulticast(ip net.IP) bool {
	bits := uint32FromIP(ip)
	return bits&multicastMask == multicastBase
}

// ServicePort computes the destination UDP port for a service, per spec section 4.8:
// `0100_00SS_SSSS_SSSR` where S is the 9-bit service id and R is 1 for responses.
func ServicePort(service cyphal.PortID, isResponse bool) uint16 {
	port := serviceBasePort | (uint16(service) << 1)
	if isResponse {
		port |= 1
	}
	return port
}

// ParseServicePort reverses ServicePort, rejecting ports outside the service range.
func ParseServicePort(port uint16) (service cyphal.PortID, isResponse bool, err error) {
	if port&0xFC00 != serviceBasePort {
		return 0, false, fmt.Errorf("udp: %d is not a service port", port)
	}
	return cyphal.PortID((port >> 1) & 0x1FF), port&1 != 0, nil
}

func ipFromUint32(bits uint32) net.IP {
	return net.IPv4(byte(bits>>24), byte(bits>>16), byte(bits>>8), byte(bits))
}

func uint32FromIP(ip net.IP) uint32 {
	v4 := ip.To4()
	if v4 == nil {
		return 0
	}
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])
}
