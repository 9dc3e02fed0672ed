package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/lanscan/internal/config"
	"github.com/nao1215/lanscan/internal/log"
	"github.com/nao1215/lanscan/internal/model"
	"github.com/nao1215/lanscan/internal/protocol"
	"github.com/nao1215/lanscan/internal/report"
	"github.com/nao1215/lanscan/internal/scan"
	"github.com/nao1215/lanscan/internal/security"
	"github.com/spf13/cobra"
)

// Report format names accepted by --format.
const (
	formatTable    = "table"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a /24 subnet for SNMP devices",
		Long: `Scan probes every host of a /24 subnet with a single SNMP GET request
and prints the devices that answered.

The subnet may be given as a network address, a CIDR, or any host address
inside the subnet; it is always reduced to its /24 network. Hosts that do
not answer within the timeout are silently treated as having no device.

Examples:
  # Scan a subnet with the default v2c community
  lanscan scan --network 172.16.40.0/24

  # Any host address selects its /24
  lanscan scan -n 172.16.40.7

  # SNMPv3 with authentication and privacy
  lanscan scan -n 172.16.40.0 -v 3 --user admin --sec-level authPriv \
    --auth-proto SHA256 --auth-key secret1 --priv-proto AES256 --priv-key secret2

  # Query a different object with a longer timeout
  lanscan scan -n 10.30.6.0 -o 1.3.6.1.2.1.1.5.0 -t 2.5

  # Markdown report written to a file
  lanscan scan -n 172.16.40.0 -f markdown --output report.md

Configuration file (.lanscan) example:
  scan:
    community: "private"
    timeout: 0.5
    threads: 50`,
		Args: cobra.NoArgs,
		RunE: runScanCmd,
	}

	// Target selection
	cmd.Flags().StringP("network", "n", "",
		"Subnet to scan, as \"a.b.c.d\" or CIDR (reduced to its /24)")

	// SNMP protocol flags
	cmd.Flags().StringP("version", "v", string(security.Version2c),
		"SNMP version (2c or 3)")
	cmd.Flags().StringP("community", "c", security.DefaultCommunity,
		"SNMPv2c community string")
	cmd.Flags().String("user", "",
		"SNMPv3 USM user name")
	cmd.Flags().String("sec-level", string(security.NoAuthNoPriv),
		"SNMPv3 security level (noAuthNoPriv, authNoPriv, authPriv)")
	cmd.Flags().String("auth-proto", string(security.AuthNone),
		"SNMPv3 auth protocol (NONE, MD5, SHA, SHA224, SHA256, SHA384, SHA512)")
	cmd.Flags().String("auth-key", "",
		"SNMPv3 auth passphrase")
	cmd.Flags().String("priv-proto", string(security.PrivNone),
		"SNMPv3 privacy protocol (NONE, DES, AES, AES128, AES192, AES256, AES192C, AES256C)")
	cmd.Flags().String("priv-key", "",
		"SNMPv3 privacy passphrase")

	// Probe behavior flags
	cmd.Flags().StringP("oid", "o", protocol.DefaultOID,
		"OID queried on every host")
	cmd.Flags().Float64P("timeout", "t", protocol.DefaultTimeout.Seconds(),
		"Response timeout per request in seconds")
	cmd.Flags().IntP("retries", "r", protocol.DefaultRetries,
		"Retransmissions per host after the first request")
	cmd.Flags().IntP("threads", "T", scan.DefaultThreads,
		"Maximum number of hosts probed concurrently")

	// Configuration file
	cmd.Flags().String("config", "",
		"Configuration file path (default: .lanscan in current or home directory)")

	// Report flags
	cmd.Flags().StringP("format", "f", formatTable,
		"Report format (table, markdown, or json)")
	cmd.Flags().String("output", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags and the configuration file
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags and the configuration
// file. Flags that were set explicitly always win; the file covers the rest.
func buildConfig(cmd *cobra.Command, _ []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.Network, err = cmd.Flags().GetString("network")
	if err != nil {
		return nil, err
	}

	cfg.Version, err = cmd.Flags().GetString("version")
	if err != nil {
		return nil, err
	}

	cfg.Community, err = cmd.Flags().GetString("community")
	if err != nil {
		return nil, err
	}

	cfg.User, err = cmd.Flags().GetString("user")
	if err != nil {
		return nil, err
	}

	cfg.SecLevel, err = cmd.Flags().GetString("sec-level")
	if err != nil {
		return nil, err
	}

	cfg.AuthProto, err = cmd.Flags().GetString("auth-proto")
	if err != nil {
		return nil, err
	}

	cfg.AuthKey, err = cmd.Flags().GetString("auth-key")
	if err != nil {
		return nil, err
	}

	cfg.PrivProto, err = cmd.Flags().GetString("priv-proto")
	if err != nil {
		return nil, err
	}

	cfg.PrivKey, err = cmd.Flags().GetString("priv-key")
	if err != nil {
		return nil, err
	}

	cfg.OID, err = cmd.Flags().GetString("oid")
	if err != nil {
		return nil, err
	}

	timeoutSec, err := cmd.Flags().GetFloat64("timeout")
	if err != nil {
		return nil, err
	}
	cfg.Timeout = time.Duration(timeoutSec * float64(time.Second))

	cfg.Retries, err = cmd.Flags().GetInt("retries")
	if err != nil {
		return nil, err
	}

	cfg.Threads, err = cmd.Flags().GetInt("threads")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg.File, err = loadFileConfig(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}

	// The file fills in whatever the command line left untouched.
	if !cmd.Flags().Changed("community") {
		cfg.Community = cfg.File.Scan.CommunityOrDefault()
	}
	if !cmd.Flags().Changed("oid") {
		cfg.OID = cfg.File.Scan.OIDOrDefault()
	}
	if !cmd.Flags().Changed("timeout") {
		cfg.Timeout = cfg.File.Scan.Timeout()
	}
	if !cmd.Flags().Changed("retries") {
		cfg.Retries = cfg.File.Scan.RetryCount()
	}
	if !cmd.Flags().Changed("threads") {
		cfg.Threads = cfg.File.Scan.ThreadCount()
	}

	// Negative retries mean no retry rather than an error; a thread count
	// below one probes nothing, so it is raised to one.
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}
	switch format {
	case formatTable:
	case formatJSON:
		cfg.JSONReport = true
	case formatMarkdown:
		cfg.MarkdownReport = true
	default:
		return nil, fmt.Errorf("unknown format %q (expected table, markdown, or json)", format)
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFileConfig resolves and loads the configuration file.
// If user explicitly specified a config file path, error if not found.
// If no path specified, silently use an empty config if no file is found.
func loadFileConfig(configPath string) (*config.File, error) {
	explicitConfigPath := configPath != ""
	found := config.FindConfigFile(configPath)

	if found == "" {
		if explicitConfigPath {
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return &config.File{}, nil
	}

	cf, err := config.LoadConfigFile(found)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
	}
	return cf, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// Credential attributes are masked before they reach the output.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// buildSecurity validates the protocol flags and assembles the security
// context for the scan. A v2c context needs only the community string; a v3
// context validates the USM credentials before any packet is sent.
func buildSecurity(cfg *config.Config) (security.Context, error) {
	version, err := security.ParseVersion(cfg.Version)
	if err != nil {
		return security.Context{}, err
	}

	if version == security.Version2c {
		return security.NewCommunity(cfg.Community), nil
	}

	level, err := security.ParseLevel(cfg.SecLevel)
	if err != nil {
		return security.Context{}, err
	}

	authProto, err := security.ParseAuthProtocol(cfg.AuthProto)
	if err != nil {
		return security.Context{}, err
	}

	privProto, err := security.ParsePrivProtocol(cfg.PrivProto)
	if err != nil {
		return security.Context{}, err
	}

	return security.NewUSM(cfg.User, level, authProto, cfg.AuthKey, privProto, cfg.PrivKey)
}

// runScan executes the subnet scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	subnet, err := model.NewSubnet(cfg.Network)
	if err != nil {
		return err
	}

	sec, err := buildSecurity(cfg)
	if err != nil {
		return err
	}

	logger.Info("starting scan",
		"network", subnet.String(),
		"security", sec.String(),
		"oid", cfg.OID,
		"timeout", cfg.Timeout,
		"retries", cfg.Retries,
		"threads", cfg.Threads,
	)

	scanner := scan.NewScanner(
		scan.WithSecurity(sec),
		scan.WithOID(cfg.OID),
		scan.WithTimeout(cfg.Timeout),
		scan.WithRetries(cfg.Retries),
		scan.WithThreads(cfg.Threads),
		scan.WithLogger(logger),
	)

	fmt.Printf("Scanning %s...\n", subnet)
	startTime := time.Now()

	devices, err := scanner.Scan(ctx, subnet)
	if err != nil {
		return fmt.Errorf("scan of %s failed: %w", subnet, err)
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Scan completed in %s\n\n", elapsed.Round(time.Millisecond))

	return outputReport(cfg, devices)
}

// outputReport writes the scan report in the requested format.
func outputReport(cfg *config.Config, devices model.Devices) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600)
		// Reports map out the management plane of the lab, so they should
		// only be readable by the owner
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	_, err := newReportWriter(cfg, output).Write(devices)
	return err
}

// newReportWriter selects the report writer for the configured format.
// The format was already validated when the config was built.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewTableWriter(output)
	}
}
