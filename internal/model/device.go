package model

import (
	"net/netip"
	"sort"
	"strings"
)

// Device is one discovered SNMP device: the address that answered the probe
// and the product name it reported.
type Device struct {
	// Addr is the device's IPv4 address in dotted-quad form.
	Addr string `json:"ip"`
	// Product is the value the device returned for the queried OID.
	Product string `json:"product_name"`
}

// Devices is an ordered collection of discovered devices.
type Devices []Device

// Sort orders the devices by ascending numeric dotted-quad address: each
// octet compares as an integer, so "10.0.0.9" sorts before "10.0.0.100".
// The sort is stable, which keeps results deterministic when addresses
// repeat in hand-built fixtures.
func (d Devices) Sort() {
	sort.SliceStable(d, func(i, j int) bool {
		return compareAddrs(d[i].Addr, d[j].Addr) < 0
	})
}

// compareAddrs compares two dotted-quad addresses numerically. Strings that
// do not parse as IP addresses fall back to lexical comparison so a bad
// fixture cannot panic the sort.
func compareAddrs(a, b string) int {
	addrA, errA := netip.ParseAddr(a)
	addrB, errB := netip.ParseAddr(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return addrA.Compare(addrB)
}

// Addrs returns just the addresses, in the collection's current order.
func (d Devices) Addrs() []string {
	addrs := make([]string, 0, len(d))
	for _, dev := range d {
		addrs = append(addrs, dev.Addr)
	}
	return addrs
}

// GroupByProduct maps each product name to the addresses that reported it,
// preserving the collection's current order within each group. Callers that
// need grouped output sorted should Sort() the collection first.
func (d Devices) GroupByProduct() map[string][]string {
	groups := make(map[string][]string)
	for _, dev := range d {
		groups[dev.Product] = append(groups[dev.Product], dev.Addr)
	}
	return groups
}
