package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/lanscan/internal/protocol"
	"github.com/nao1215/lanscan/internal/scan"
	"github.com/nao1215/lanscan/internal/security"
)

// Default configuration values.
// Probe-level defaults (OID, timeout, retries, community) live in the
// protocol and security packages; the constants here cover the portal and
// the console inventory collector.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "lanscan"

	// DefaultPortalListen is the portal HTTP listen address.
	// Only the port is set so the portal binds all interfaces; LAN
	// dashboards are typically reached from other machines.
	DefaultPortalListen = ":8130"

	// DefaultCacheTTL is how long the portal serves cached scan results
	// before a new scan of the same network is allowed to replace them.
	// Five minutes keeps repeated dashboard refreshes from hammering the
	// subnet with SNMP probes.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultDiscoveryTimeout is the TCP connect timeout used when probing
	// console servers for their RealPort discovery ports. Console servers
	// answer quickly on the local network, so 500ms is enough.
	DefaultDiscoveryTimeout = 500 * time.Millisecond

	// DefaultLoginTimeout bounds each step of the console login dialog.
	// The CLI on the attached devices is slow to redraw its prompt, so
	// this is per-step rather than per-session.
	DefaultLoginTimeout = 5 * time.Second

	// DefaultConsoleUsername is the factory login for the attached devices.
	DefaultConsoleUsername = "tech"

	// DefaultConsolePassword is the factory password for the attached devices.
	DefaultConsolePassword = "packetlight"

	// DefaultDatabaseFile is the SQLite file name for inventory snapshots,
	// stored under the XDG data directory unless overridden.
	DefaultDatabaseFile = "inventory.db"
)

// Config holds all configuration options for a subnet scan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., ProbeConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Network is the /24 subnet to scan, as "172.16.40.0" or "172.16.40.0/24".
	// Host addresses like "172.16.40.7" are accepted and reduced to their /24.
	Network string

	// OID is the object identifier queried on every host.
	// The default asks the attached devices for their product name.
	OID string

	// Timeout is the SNMP response timeout for each probe.
	// This applies per request, not to the scan as a whole.
	Timeout time.Duration

	// Retries is the number of SNMP retransmissions per host after the
	// first request. Zero means a single request with no retry.
	Retries int

	// Threads is the maximum number of hosts probed concurrently.
	Threads int

	// Version selects the SNMP version, "2c" or "3".
	Version string

	// Community is the SNMPv2c community string. Ignored for v3.
	Community string

	// User is the SNMPv3 USM user name. Required when Version is "3".
	User string

	// SecLevel is the SNMPv3 security level: noAuthNoPriv, authNoPriv,
	// or authPriv. Ignored for v2c.
	SecLevel string

	// AuthProto is the SNMPv3 authentication protocol name (e.g. SHA256).
	AuthProto string

	// AuthKey is the SNMPv3 authentication passphrase.
	AuthKey string

	// PrivProto is the SNMPv3 privacy protocol name (e.g. AES256).
	PrivProto string

	// PrivKey is the SNMPv3 privacy passphrase.
	PrivKey string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of the plain table.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of the plain table.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .lanscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// File holds the loaded configuration file, if one was found.
	// This is populated by LoadConfigFile and consulted for defaults
	// the CLI flags did not override.
	File *File
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, thread
// count). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		OID:       protocol.DefaultOID,
		Timeout:   protocol.DefaultTimeout,
		Retries:   protocol.DefaultRetries,
		Threads:   scan.DefaultThreads,
		Version:   string(security.Version2c),
		Community: security.DefaultCommunity,
		SecLevel:  string(security.NoAuthNoPriv),
	}
}

// XDGDataDir returns the XDG data directory for lanscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/lanscan
// On macOS: ~/Library/Application Support/lanscan
// On Windows: %LOCALAPPDATA%\lanscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for lanscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/lanscan
// On macOS: ~/Library/Application Support/lanscan
// On Windows: %APPDATA%\lanscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for lanscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/lanscan
// On macOS: ~/Library/Caches/lanscan
// On Windows: %LOCALAPPDATA%\lanscan\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// DefaultDatabasePath returns the default SQLite path for inventory snapshots.
func DefaultDatabasePath() string {
	return filepath.Join(XDGDataDir(), DefaultDatabaseFile)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
// Credential validation (v3 user, keys, protocol names) happens in the
// security package when the context is built, not here.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have a subnet to scan
	if c.Network == "" {
		return ErrNoNetwork
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// Threads must be positive; zero would mean no probing at all
	if c.Threads <= 0 {
		return ErrInvalidThreads
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
