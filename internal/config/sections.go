package config

import (
	"time"

	"github.com/nao1215/lanscan/internal/protocol"
	"github.com/nao1215/lanscan/internal/scan"
	"github.com/nao1215/lanscan/internal/security"
)

// ScanSection holds scan defaults from the configuration file.
// CLI flags take precedence over these values.
type ScanSection struct {
	// Community is the SNMPv2c community string.
	Community string `yaml:"community,omitempty"`

	// OID is the object identifier queried on every host.
	OID string `yaml:"oid,omitempty"`

	// TimeoutSeconds is the per-probe response timeout in seconds.
	// Fractional values are allowed ("timeout: 0.5").
	TimeoutSeconds float64 `yaml:"timeout,omitempty"`

	// Retries is the number of retransmissions per host.
	// A pointer distinguishes an explicit 0 (no retry) from unset.
	Retries *int `yaml:"retries,omitempty"`

	// Threads is the maximum number of hosts probed concurrently.
	Threads int `yaml:"threads,omitempty"`
}

// CommunityOrDefault returns the configured community string or "admin".
func (s ScanSection) CommunityOrDefault() string {
	if s.Community == "" {
		return security.DefaultCommunity
	}
	return s.Community
}

// OIDOrDefault returns the configured OID or the product name OID.
func (s ScanSection) OIDOrDefault() string {
	if s.OID == "" {
		return protocol.DefaultOID
	}
	return s.OID
}

// Timeout converts the configured timeout to a duration, falling back to
// the probe default when unset or non-positive.
func (s ScanSection) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return protocol.DefaultTimeout
	}
	return time.Duration(s.TimeoutSeconds * float64(time.Second))
}

// RetryCount returns the configured retry count clamped to zero,
// or the probe default when unset.
func (s ScanSection) RetryCount() int {
	if s.Retries == nil {
		return protocol.DefaultRetries
	}
	if *s.Retries < 0 {
		return 0
	}
	return *s.Retries
}

// ThreadCount returns the configured concurrency cap, or the scanner
// default when unset or non-positive.
func (s ScanSection) ThreadCount() int {
	if s.Threads <= 0 {
		return scan.DefaultThreads
	}
	return s.Threads
}

// PortalSection holds portal server settings from the configuration file.
type PortalSection struct {
	// Listen is the HTTP listen address, e.g. ":8130" or "127.0.0.1:8130".
	Listen string `yaml:"listen,omitempty"`

	// Networks lists the subnets the portal offers for scanning.
	Networks []string `yaml:"networks,omitempty"`

	// CacheTTLSeconds is how long scan results are served from cache
	// before a fresh scan of the same network is started.
	CacheTTLSeconds float64 `yaml:"cache_ttl,omitempty"`
}

// ListenAddr returns the configured listen address or the portal default.
func (p PortalSection) ListenAddr() string {
	if p.Listen == "" {
		return DefaultPortalListen
	}
	return p.Listen
}

// CacheTTL converts the configured TTL to a duration, falling back to
// the portal default when unset or non-positive.
func (p PortalSection) CacheTTL() time.Duration {
	if p.CacheTTLSeconds <= 0 {
		return DefaultCacheTTL
	}
	return time.Duration(p.CacheTTLSeconds * float64(time.Second))
}

// IPRange is an inclusive IPv4 address range to sweep for console servers.
// A range with "0" as either bound is kept in the file but skipped during
// discovery, so operators can park ranges without deleting them.
type IPRange struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Disabled reports whether this range is parked and must be skipped.
func (r IPRange) Disabled() bool {
	return r.Start == "0" || r.End == "0"
}

// InventorySection holds console inventory settings from the configuration file.
type InventorySection struct {
	// Ranges are the address ranges swept for console servers.
	Ranges []IPRange `yaml:"ranges,omitempty"`

	// Username is the login for devices attached to console lines.
	Username string `yaml:"username,omitempty"`

	// Password is the password for devices attached to console lines.
	Password string `yaml:"password,omitempty"`

	// UseSSH selects SSH console lines instead of raw telnet lines.
	UseSSH bool `yaml:"use_ssh,omitempty"`

	// Database is the SQLite path for inventory snapshots.
	// Empty means the XDG data directory default.
	Database string `yaml:"database,omitempty"`
}

// Credentials returns the configured console login, falling back to the
// factory defaults of the attached devices.
func (i InventorySection) Credentials() (username, password string) {
	username = i.Username
	if username == "" {
		username = DefaultConsoleUsername
	}
	password = i.Password
	if password == "" {
		password = DefaultConsolePassword
	}
	return username, password
}

// DatabasePath returns the configured SQLite path or the XDG default.
func (i InventorySection) DatabasePath() string {
	if i.Database == "" {
		return DefaultDatabasePath()
	}
	return i.Database
}

// ActiveRanges returns the ranges that are not parked with a "0" bound.
func (i InventorySection) ActiveRanges() []IPRange {
	active := make([]IPRange, 0, len(i.Ranges))
	for _, r := range i.Ranges {
		if r.Disabled() {
			continue
		}
		active = append(active, r)
	}
	return active
}

// File represents the structure of the .lanscan configuration file.
type File struct {
	// Scan holds defaults for the subnet scanner.
	Scan ScanSection `yaml:"scan,omitempty"`

	// Portal holds settings for the portal HTTP server.
	Portal PortalSection `yaml:"portal,omitempty"`

	// Inventory holds settings for the console inventory collector.
	Inventory InventorySection `yaml:"inventory,omitempty"`
}
