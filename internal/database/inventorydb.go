package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/lanscan/internal/model"
)

// InventoryDB provides SQLite-based storage for console inventory snapshots.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: the store keeps exactly one row per serial line, keyed by
// (console_ip, console_port), and every write replaces the previous state.
// Operators asked for "what is on the line right now", not an audit trail,
// so collecting again simply overwrites the snapshot.
type InventoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures InventoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an InventoryDB at the specified file path.
// If CreateIfNotExists is true, the parent directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbPath string, opts Options) (*InventoryDB, error) {
	// Check if we should create the database or require it to exist
	if !opts.CreateIfNotExists {
		// Check if database file exists
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		// Ensure parent directory exists
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Build connection string
	// We use modernc.org/sqlite which uses a different connection string format.
	// When CreateIfNotExists is false, we use mode=rw to prevent creating new files.
	// When CreateIfNotExists is true, we use mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	// SQLite doesn't benefit from multiple connections for writes,
	// but multiple readers can improve performance
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	idb := &InventoryDB{
		db:     db,
		dbPath: dbPath,
	}

	// Enable WAL mode if requested
	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Create tables
	if err := idb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return idb, nil
}

// Close closes the database connection.
func (idb *InventoryDB) Close() error {
	return idb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (idb *InventoryDB) createTables() error {
	schema := `
	-- Inventory rows store the latest device state per console serial line
	CREATE TABLE IF NOT EXISTS inventory (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		console_ip TEXT NOT NULL,
		console_port INTEGER NOT NULL,
		device_ip TEXT NOT NULL,
		product_name TEXT NOT NULL,
		collected_at DATETIME NOT NULL,
		UNIQUE(console_ip, console_port)
	);

	CREATE INDEX IF NOT EXISTS idx_inventory_console ON inventory(console_ip);
	CREATE INDEX IF NOT EXISTS idx_inventory_product ON inventory(product_name);
	`

	_, err := idb.db.ExecContext(context.Background(), schema)
	return err
}

// upsertQuery inserts a line state or replaces the previous one for the
// same (console_ip, console_port) pair.
const upsertQuery = `
INSERT INTO inventory (console_ip, console_port, device_ip, product_name, collected_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(console_ip, console_port) DO UPDATE SET
	device_ip = excluded.device_ip,
	product_name = excluded.product_name,
	collected_at = excluded.collected_at
`

// UpsertEntry inserts or updates the state of a single serial line.
func (idb *InventoryDB) UpsertEntry(ctx context.Context, entry model.InventoryEntry) error {
	_, err := idb.db.ExecContext(ctx, upsertQuery,
		entry.ConsoleAddr,
		entry.ConsolePort,
		entry.DeviceAddr,
		entry.Product,
		formatTimestamp(entry.CollectedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert inventory entry: %w", err)
	}

	return nil
}

// UpsertEntries inserts or updates multiple line states in a single
// transaction. It returns the number of entries written.
func (idb *InventoryDB) UpsertEntries(ctx context.Context, entries model.InventoryEntries) (int, error) {
	tx, err := idb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	written := 0
	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, upsertQuery,
			entry.ConsoleAddr,
			entry.ConsolePort,
			entry.DeviceAddr,
			entry.Product,
			formatTimestamp(entry.CollectedAt),
		); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("failed to upsert inventory entry: %w", err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return written, nil
}

// ReplaceConsole atomically replaces all stored line states for one console
// server with the given entries. Lines that stopped answering since the last
// collection are removed rather than left with stale state.
func (idb *InventoryDB) ReplaceConsole(ctx context.Context, consoleAddr string, entries model.InventoryEntries) error {
	tx, err := idb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM inventory WHERE console_ip = ?", consoleAddr); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear console %s: %w", consoleAddr, err)
	}

	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, upsertQuery,
			entry.ConsoleAddr,
			entry.ConsolePort,
			entry.DeviceAddr,
			entry.Product,
			formatTimestamp(entry.CollectedAt),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to upsert inventory entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetEntry retrieves the stored state of one serial line.
// It returns nil without error when the line has never been collected.
func (idb *InventoryDB) GetEntry(ctx context.Context, consoleAddr string, consolePort int) (*model.InventoryEntry, error) {
	query := `
	SELECT console_ip, console_port, device_ip, product_name, collected_at
	FROM inventory
	WHERE console_ip = ? AND console_port = ?
	`

	var entry model.InventoryEntry
	var collectedAt string

	err := idb.db.QueryRowContext(ctx, query, consoleAddr, consolePort).Scan(
		&entry.ConsoleAddr,
		&entry.ConsolePort,
		&entry.DeviceAddr,
		&entry.Product,
		&collectedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory entry: %w", err)
	}

	// Parse timestamp (SQLite may return different formats depending on version/configuration)
	entry.CollectedAt = parseTimestamp(collectedAt)

	return &entry, nil
}

// ListEntries returns every stored line state, ordered by console address
// and line port for a stable listing.
func (idb *InventoryDB) ListEntries(ctx context.Context) (model.InventoryEntries, error) {
	query := `
	SELECT console_ip, console_port, device_ip, product_name, collected_at
	FROM inventory
	ORDER BY console_ip, console_port
	`

	return idb.queryEntries(ctx, query)
}

// ListByConsole returns the stored line states of one console server,
// ordered by line port.
func (idb *InventoryDB) ListByConsole(ctx context.Context, consoleAddr string) (model.InventoryEntries, error) {
	query := `
	SELECT console_ip, console_port, device_ip, product_name, collected_at
	FROM inventory
	WHERE console_ip = ?
	ORDER BY console_port
	`

	return idb.queryEntries(ctx, query, consoleAddr)
}

// queryEntries runs a SELECT over the inventory table and scans the rows.
func (idb *InventoryDB) queryEntries(ctx context.Context, query string, args ...interface{}) (model.InventoryEntries, error) {
	rows, err := idb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	var entries model.InventoryEntries
	for rows.Next() {
		var entry model.InventoryEntry
		var collectedAt string

		if err := rows.Scan(
			&entry.ConsoleAddr,
			&entry.ConsolePort,
			&entry.DeviceAddr,
			&entry.Product,
			&collectedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inventory entry: %w", err)
		}

		entry.CollectedAt = parseTimestamp(collectedAt)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// ListConsoles returns the addresses of all console servers with at least
// one stored line state.
func (idb *InventoryDB) ListConsoles(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT console_ip FROM inventory
	ORDER BY console_ip
	`

	rows, err := idb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list consoles: %w", err)
	}
	defer rows.Close()

	var consoles []string
	for rows.Next() {
		var console string
		if err := rows.Scan(&console); err != nil {
			return nil, fmt.Errorf("failed to scan console: %w", err)
		}
		consoles = append(consoles, console)
	}

	return consoles, rows.Err()
}

// CountByProduct returns the number of stored lines per product name.
// Lines whose product could not be parsed are counted under "None".
func (idb *InventoryDB) CountByProduct(ctx context.Context) (map[string]int, error) {
	query := `
	SELECT product_name, COUNT(*) FROM inventory
	GROUP BY product_name
	`

	rows, err := idb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var product string
		var count int
		if err := rows.Scan(&product, &count); err != nil {
			return nil, fmt.Errorf("failed to scan product count: %w", err)
		}
		counts[product] = count
	}

	return counts, rows.Err()
}

// formatTimestamp renders a time in the SQLite default datetime format.
// A zero time is stored as the current time so rows never carry a
// meaningless zero timestamp.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	// Return zero time if no format matches
	// This is a fallback to avoid breaking functionality for edge cases
	return time.Time{}
}
