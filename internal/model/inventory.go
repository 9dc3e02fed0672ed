package model

import (
	"fmt"
	"time"
)

// Console-server line layouts. A terminal server that listens on discovery
// port 2017 carries 32 serial lines; one that only listens on 2016 carries 16.
const (
	// ConsoleLines16 is a 16-line console server chassis.
	ConsoleLines16 = 16
	// ConsoleLines32 is a 32-line console server chassis.
	ConsoleLines32 = 32
)

// ConsoleServer is a terminal server discovered by TCP port probing, together
// with the number of serial lines its open discovery port indicates.
type ConsoleServer struct {
	// Addr is the console server's IPv4 address.
	Addr string `json:"ip"`
	// Lines is the serial line count, ConsoleLines16 or ConsoleLines32.
	Lines int `json:"lines"`
}

// String returns a short human-readable description, e.g. "172.16.10.2 (32 lines)".
func (c ConsoleServer) String() string {
	return fmt.Sprintf("%s (%d lines)", c.Addr, c.Lines)
}

// InventoryEntry is the device state collected from one serial line of a
// console server. One entry per (console address, console port) pair; the
// store keeps only the most recent state, not a history.
type InventoryEntry struct {
	// ConsoleAddr is the console server the line belongs to.
	ConsoleAddr string `json:"console_ip"`
	// ConsolePort is the TCP port of the serial line (2001..2032 telnet,
	// 2501..2532 SSH).
	ConsolePort int `json:"console_port"`
	// DeviceAddr is the management IP the attached device reported, or
	// "None" when the line answered but the address could not be parsed.
	DeviceAddr string `json:"device_ip"`
	// Product is the product name parsed from the device prompt, or "None".
	Product string `json:"product_name"`
	// CollectedAt is when the line was read.
	CollectedAt time.Time `json:"collected_at"`
}

// InventoryEntries is an ordered collection of collected line states.
type InventoryEntries []InventoryEntry

// GroupByConsole maps each console server address to its entries, preserving
// the collection's current order within each group.
func (e InventoryEntries) GroupByConsole() map[string]InventoryEntries {
	groups := make(map[string]InventoryEntries)
	for _, entry := range e {
		groups[entry.ConsoleAddr] = append(groups[entry.ConsoleAddr], entry)
	}
	return groups
}
