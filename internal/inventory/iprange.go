package inventory

import (
	"encoding/binary"
	"fmt"
	"net"
)

// Range is an inclusive span of IPv4 addresses probed for console servers.
// Spans typically cover a rack's management addresses and stay small, but
// nothing stops one from crossing an octet boundary.
type Range struct {
	// Start is the first address of the span.
	Start string

	// End is the last address of the span, included in the walk.
	End string
}

// Hosts expands the range into individual addresses, Start through End
// inclusive. A reversed range expands to nothing rather than failing, so a
// misordered entry quietly covers no hosts instead of aborting the sweep.
//
// Every address in between is included, network and broadcast addresses too:
// console servers are assigned by hand and a span may legitimately cross a
// subnet boundary.
func (r Range) Hosts() ([]string, error) {
	start, err := parseIPv4(r.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseIPv4(r.End)
	if err != nil {
		return nil, err
	}

	if start > end {
		return nil, nil
	}

	// Iterate by offset to avoid wrapping when End is 255.255.255.255.
	count := end - start + 1
	hosts := make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		hosts = append(hosts, formatIPv4(start+i))
	}
	return hosts, nil
}

// parseIPv4 converts a dotted-quad address into its 32-bit value.
func parseIPv4(s string) (uint32, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
	v4 := ip.To4()
	if v4 == nil {
		return 0, fmt.Errorf("%w: %q is not IPv4", ErrInvalidRange, s)
	}
	return binary.BigEndian.Uint32(v4), nil
}

// formatIPv4 converts a 32-bit value back into a dotted-quad address.
func formatIPv4(v uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return net.IP(b[:]).String()
}
