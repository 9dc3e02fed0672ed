// Package model defines the core data structures used throughout lanscan.
//
// This package contains the following main types:
//   - Subnet: Immutable /24 network base derived from an address or CIDR
//   - Device: One discovered SNMP device (address + reported product name)
//   - ConsoleServer / InventoryEntry: Console-server inventory records
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (protocol, scan, portal, inventory, report)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for API responses and
// database storage.
package model
