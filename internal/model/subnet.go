package model

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

// Subnet errors.
var (
	// ErrInvalidNetwork is returned when the network format is invalid.
	ErrInvalidNetwork = errors.New(`invalid network format: use "10.30.6.0" or "10.30.6.0/24"`)
	// ErrEmptyNetwork is returned when the network is empty.
	ErrEmptyNetwork = errors.New("network cannot be empty")
)

const (
	// firstHostOctet is the lowest probed host octet (.0 is the network address).
	firstHostOctet = 1
	// lastHostOctet is the highest probed host octet (.255 is the broadcast address).
	lastHostOctet = 254
	// HostCount is the number of candidate host addresses in one /24 scan.
	HostCount = lastHostOctet - firstHostOctet + 1
)

// Subnet is an immutable value object representing the /24 base a scan
// covers. It normalizes either a plain IPv4 address or a CIDR to the first
// three octets ("a.b.c"); the scan then enumerates "a.b.c.1".."a.b.c.254".
type Subnet struct {
	base string // First three octets, e.g. "172.16.40"
}

// NewSubnet creates a Subnet from an IPv4 address ("172.16.40.0") or a CIDR
// ("172.16.40.0/24"). A CIDR is reduced to its network address first, so host
// bits may be set. Returns an error for anything that is not IPv4.
func NewSubnet(network string) (Subnet, error) {
	trimmed := strings.TrimSpace(network)
	if trimmed == "" {
		return Subnet{}, ErrEmptyNetwork
	}

	var addr netip.Addr
	if strings.Contains(trimmed, "/") {
		prefix, err := netip.ParsePrefix(trimmed)
		if err != nil {
			return Subnet{}, fmt.Errorf("%w: %q", ErrInvalidNetwork, network)
		}
		addr = prefix.Masked().Addr()
	} else {
		parsed, err := netip.ParseAddr(trimmed)
		if err != nil {
			return Subnet{}, fmt.Errorf("%w: %q", ErrInvalidNetwork, network)
		}
		addr = parsed
	}

	if !addr.Is4() {
		return Subnet{}, fmt.Errorf("%w: %q", ErrInvalidNetwork, network)
	}

	octets := addr.As4()
	return Subnet{
		base: fmt.Sprintf("%d.%d.%d", octets[0], octets[1], octets[2]),
	}, nil
}

// MustNewSubnet creates a new Subnet or panics if invalid.
// Use only for known-valid networks in tests or initialization.
func MustNewSubnet(network string) Subnet {
	s, err := NewSubnet(network)
	if err != nil {
		panic(err)
	}
	return s
}

// Base returns the first three octets, e.g. "172.16.40".
func (s Subnet) Base() string {
	return s.base
}

// String returns the CIDR form of the subnet, e.g. "172.16.40.0/24".
func (s Subnet) String() string {
	if s.IsZero() {
		return ""
	}
	return s.base + ".0/24"
}

// Hosts returns the 254 candidate host addresses of the subnet, host octet
// 1 through 254 inclusive. The network (.0) and broadcast (.255) addresses
// are never included.
func (s Subnet) Hosts() []string {
	hosts := make([]string, 0, HostCount)
	for octet := firstHostOctet; octet <= lastHostOctet; octet++ {
		hosts = append(hosts, fmt.Sprintf("%s.%d", s.base, octet))
	}
	return hosts
}

// IsZero returns true if this is a zero value (empty) Subnet.
func (s Subnet) IsZero() bool {
	return s.base == ""
}

// Equals returns true if two Subnet values cover the same /24.
func (s Subnet) Equals(other Subnet) bool {
	return s.base == other.base
}
