package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for lanscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lanscan",
		Short: "SNMP device scanner for lab networks",
		Long: `lanscan sweeps /24 lab subnets for SNMP-manageable devices.

It sends one SNMP GET request to every host of the subnet with bounded
concurrency and prints the addresses and product names of the devices
that answered. The serve subcommand exposes the same scans over a JSON
HTTP API, and the inventory subcommand walks console servers for devices
that have no management address of their own.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands.
	// The scan command uses -v for the SNMP version, so verbose has no
	// shorthand.
	cmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInventoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
