package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamed0406/pingwatch/internal/config"
	"github.com/hamed0406/pingwatch/internal/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the targets and settings files",
	Long: `Validate both configuration files without probing anything.

Every invalid target entry is reported, not just the first one.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	serversPath, settingsPath := configPaths(cmd)

	cfg, err := config.LoadSettings(settingsPath)
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	specs, err := config.LoadTargets(serversPath)
	if err != nil {
		return fmt.Errorf("invalid targets: %w", err)
	}

	kinds := map[domain.CheckKind]int{}
	for _, s := range specs {
		kinds[s.Kind()]++
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Targets:           %d (ping %d, port %d, http %d, keyword %d)\n",
		len(specs), kinds[domain.KindPing], kinds[domain.KindPort], kinds[domain.KindHTTP], kinds[domain.KindKeyword])
	fmt.Fprintf(out, "  Failure threshold: %d\n", cfg.FailureThreshold)
	fmt.Fprintf(out, "  Poll interval:     %s\n", cfg.PollInterval)
	fmt.Fprintf(out, "  Report interval:   %s\n", cfg.StatusReportInterval)
	fmt.Fprintf(out, "  Report only down:  %t\n", cfg.ReportOnlyIfDown)
	if cfg.StatusAddr != "" {
		fmt.Fprintf(out, "  Status API:        %s\n", cfg.StatusAddr)
	}
	return nil
}
