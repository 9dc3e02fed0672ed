package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nao1215/lanscan/internal/config"
	"github.com/nao1215/lanscan/internal/database"
	"github.com/nao1215/lanscan/internal/inventory"
	"github.com/nao1215/lanscan/internal/model"
	"github.com/nao1215/lanscan/internal/report"
	"github.com/spf13/cobra"
)

// NewInventoryCmd creates the inventory command.
func NewInventoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Collect device inventory from console servers",
		Long: `Inventory walks console servers for devices that have no management address.

Discovery sweeps the configured IP ranges for console servers by probing
their RealPort discovery ports, then logs in to every serial line, captures
the prompt of the attached device, and asks it for its management address.

Lines with nothing attached time out and are skipped. The collected entries
are printed grouped by console server; --store also saves them as the
current snapshot in the inventory database.

Examples:
  # Sweep the ranges from the configuration file
  lanscan inventory

  # Use SSH console lines and store the snapshot
  lanscan inventory --ssh --store

  # Print the stored snapshot without touching the network
  lanscan inventory list`,
		Args: cobra.NoArgs,
		RunE: runInventoryCmd,
	}

	cmd.Flags().Bool("store", false,
		"Store collected entries as the snapshot in the inventory database")
	cmd.Flags().Bool("ssh", false,
		"Use SSH console lines instead of telnet")
	cmd.Flags().StringP("format", "f", formatTable,
		"Report format (table, markdown, or json)")
	cmd.Flags().String("config", "",
		"Configuration file path (default: .lanscan in current or home directory)")

	cmd.AddCommand(NewInventoryListCmd())

	return cmd
}

// runInventoryCmd executes the inventory command.
func runInventoryCmd(cmd *cobra.Command, _ []string) error {
	store, err := cmd.Flags().GetBool("store")
	if err != nil {
		return err
	}

	useSSH, err := cmd.Flags().GetBool("ssh")
	if err != nil {
		return err
	}

	format, err := cmd.Flags().GetString("format")
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

	ranges := inventoryRanges(cf.Inventory)
	if len(ranges) == 0 {
		return errors.New("no inventory ranges configured (add inventory.ranges to the configuration file)")
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := setupLogger(verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runInventory(ctx, cf, ranges, store, useSSH || cf.Inventory.UseSSH, format, logger)
}

// runInventory sweeps the ranges, collects every console line, and writes
// the report.
func runInventory(ctx context.Context, cf *config.File, ranges []inventory.Range, store, useSSH bool, format string, logger *slog.Logger) error {
	discoverer := inventory.NewDiscoverer(inventory.WithDiscoveryLogger(logger))

	fmt.Printf("Discovering console servers in %d ranges...\n", len(ranges))
	consoles, err := discoverer.Discover(ctx, ranges)
	if err != nil {
		return fmt.Errorf("console discovery failed: %w", err)
	}
	if len(consoles) == 0 {
		fmt.Println("No console servers found")
		return nil
	}
	fmt.Printf("Found %d console servers, collecting...\n\n", len(consoles))

	username, password := cf.Inventory.Credentials()
	var transport inventory.Transport
	if useSSH {
		transport = inventory.NewSSHTransport(username, password)
	} else {
		transport = inventory.NewTelnetTransport()
	}

	collector := inventory.NewCollector(
		inventory.WithTransport(transport),
		inventory.WithCredentials(username, password),
		inventory.WithCollectorLogger(logger),
	)

	entries, err := collector.Collect(ctx, consoles)
	if err != nil {
		return fmt.Errorf("inventory collection failed: %w", err)
	}

	if store {
		if err := storeInventory(ctx, cf.Inventory.DatabasePath(), entries, logger); err != nil {
			return err
		}
	}

	writer, err := newInventoryWriter(format, os.Stdout)
	if err != nil {
		return err
	}
	_, err = writer.WriteInventory(entries)
	return err
}

// storeInventory replaces the stored snapshot of every collected console.
func storeInventory(ctx context.Context, dbPath string, entries model.InventoryEntries, logger *slog.Logger) error {
	db, err := database.Open(dbPath, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open inventory database: %w", err)
	}
	defer db.Close()

	for consoleAddr, group := range entries.GroupByConsole() {
		if err := db.ReplaceConsole(ctx, consoleAddr, group); err != nil {
			return fmt.Errorf("failed to store inventory for %s: %w", consoleAddr, err)
		}
	}

	logger.Info("inventory snapshot stored", "database", dbPath, "entries", len(entries))
	return nil
}

// inventoryRanges converts the active configured ranges into sweep ranges.
func inventoryRanges(section config.InventorySection) []inventory.Range {
	active := section.ActiveRanges()
	ranges := make([]inventory.Range, 0, len(active))
	for _, r := range active {
		ranges = append(ranges, inventory.Range{Start: r.Start, End: r.End})
	}
	return ranges
}

// newInventoryWriter selects the report writer for the given format name.
func newInventoryWriter(format string, output io.Writer) (report.Writer, error) {
	switch format {
	case formatTable:
		return report.NewTableWriter(output), nil
	case formatMarkdown:
		return report.NewMarkdownWriter(output), nil
	case formatJSON:
		return report.NewJSONWriter(output, report.WithPrettyPrint()), nil
	default:
		return nil, fmt.Errorf("unknown format %q (expected table, markdown, or json)", format)
	}
}

// NewInventoryListCmd creates the inventory list command.
func NewInventoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the stored inventory snapshot",
		Long: `List prints the inventory entries stored by "lanscan inventory --store"
without touching the network.`,
		Args: cobra.NoArgs,
		RunE: runInventoryListCmd,
	}

	cmd.Flags().StringP("format", "f", formatTable,
		"Report format (table, markdown, or json)")
	cmd.Flags().String("config", "",
		"Configuration file path (default: .lanscan in current or home directory)")

	return cmd
}

// runInventoryListCmd executes the inventory list command.
func runInventoryListCmd(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
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

	// The snapshot must already exist; listing never creates the database.
	dbPath := cf.Inventory.DatabasePath()
	db, err := database.Open(dbPath, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open inventory database %s: %w", dbPath, err)
	}
	defer db.Close()

	entries, err := db.ListEntries(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read inventory database: %w", err)
	}

	writer, err := newInventoryWriter(format, os.Stdout)
	if err != nil {
		return err
	}
	_, err = writer.WriteInventory(entries)
	return err
}
