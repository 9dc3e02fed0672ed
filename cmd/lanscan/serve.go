package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/lanscan/internal/config"
	"github.com/nao1215/lanscan/internal/portal"
	"github.com/nao1215/lanscan/internal/scan"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve scan results over a JSON HTTP API",
		Long: `Serve starts the portal, a JSON HTTP service in front of the subnet scanner.

The portal caches the last scan of each configured network and rescans only
when the cache expires or a refresh is forced. One scan runs at a time
process-wide; while one is running, cached results are served as-is.

Endpoints:
  GET  /api/health    liveness and version
  GET  /api/config    configured networks and cache TTL
  GET  /api/networks  cache state per network
  GET  /api/devices   devices of one network (?network=...)
  GET  /api/groups    devices grouped by product name (?network=...)
  POST /api/scan      force a refresh ({"network": "..."})

Examples:
  # Serve the networks listed in the configuration file
  lanscan serve

  # Override the listen address
  lanscan serve --listen 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", "",
		"Listen address (default from config file, else :8130)")
	cmd.Flags().String("config", "",
		"Configuration file path (default: .lanscan in current or home directory)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	listen, err := cmd.Flags().GetString("listen")
	if err != nil {
		return err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	cf, err := loadFileConfig(configPath)
	if err != nil {
		return err
	}
	if listen == "" {
		listen = cf.Portal.ListenAddr()
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	srv, err := portal.NewServer(
		portal.WithListenAddr(listen),
		portal.WithNetworks(cf.Portal.Networks...),
		portal.WithCacheTTL(cf.Portal.CacheTTL()),
		portal.WithScanOptions(scanOptionsFromFile(cf.Scan)...),
		portal.WithVersion(getVersion()),
		portal.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, shutting down...")
		cancel()
	}()

	return srv.ListenAndServe(ctx)
}

// scanOptionsFromFile converts the scan section of the configuration file
// into scanner options for the portal. Portal scans authenticate with the
// configured v2c community.
func scanOptionsFromFile(s config.ScanSection) []scan.Option {
	return []scan.Option{
		scan.WithCommunity(s.CommunityOrDefault()),
		scan.WithOID(s.OIDOrDefault()),
		scan.WithTimeout(s.Timeout()),
		scan.WithRetries(s.RetryCount()),
		scan.WithThreads(s.ThreadCount()),
	}
}
