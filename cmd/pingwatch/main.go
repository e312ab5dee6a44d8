// Package main is the entry point for the pingwatch CLI.
//
// Usage:
//
//	pingwatch run -c servers.yaml -s settings.json   # Start monitoring
//	pingwatch run --silent                           # Same, without the terminal table
//	pingwatch check                                  # Probe every target once and print a report
//	pingwatch validate                               # Validate configuration
//	pingwatch version                                # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pingwatch",
	Short: "Uptime monitor with Telegram alerts",
	Long: `pingwatch polls a list of targets (ping, TCP port, HTTP status or HTTP
keyword) on a fixed interval and sends a Telegram message when a target
goes down or comes back up.

A target is only reported down after failure_threshold consecutive failed
checks. A status report is sent after the first cycle and then every
status_report_interval_minutes.

The targets file is re-read at the start of every cycle, so targets can be
added or removed without a restart.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pingwatch %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("servers", "c", "servers.yaml", "path to the targets file")
	rootCmd.PersistentFlags().StringP("settings", "s", "settings.json", "path to the settings file")

	rootCmd.AddCommand(versionCmd)
}

func configPaths(cmd *cobra.Command) (servers, settings string) {
	servers, _ = cmd.Flags().GetString("servers")
	settings, _ = cmd.Flags().GetString("settings")
	return servers, settings
}
