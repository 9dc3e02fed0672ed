// Package database provides SQLite-based storage for console inventory.
//
// This package implements the InventoryDB, which stores the latest device
// state collected from each serial line of the discovered console servers:
// the console address, the line port, and the device IP and product name
// read over that line.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
//
// The store is a snapshot, not a log: each (console, line) pair holds one
// row and re-collecting replaces it.
package database
