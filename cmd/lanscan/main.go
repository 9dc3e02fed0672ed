// Package main provides the entry point for the lanscan CLI.
//
// lanscan discovers SNMP-manageable devices on lab /24 subnets. It probes
// every host of a subnet with a single SNMP GET, serves the results over a
// JSON API, and collects device inventory from console servers.
//
// Usage:
//
//	lanscan scan --network 172.16.40.0/24
//	lanscan serve
//	lanscan inventory
//
// See --help for all available options.
package main

// main is the entry point for lanscan.
func main() {
	Execute()
}
