package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/pingwatch/internal/config"
	"github.com/hamed0406/pingwatch/internal/domain"
	"github.com/hamed0406/pingwatch/internal/probe"
	"github.com/hamed0406/pingwatch/internal/scheduler"
	"github.com/hamed0406/pingwatch/internal/tracker"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe every target once and print a status report",
	Long: `Run a single poll cycle and print each result followed by the status
report. No notifications are sent, so bot_token and chat_id may be left
out, and every failure counts as down regardless of failure_threshold.

Exit codes:
  0 - All targets are up
  1 - At least one target is down, or the config is invalid`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	serversPath, settingsPath := configPaths(cmd)

	cfg, err := config.ReadSettings(settingsPath)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	if _, err := config.LoadTargets(serversPath); err != nil {
		return fmt.Errorf("targets: %w", err)
	}

	mon := scheduler.NewMonitor(zap.NewNop(), config.NewFileSource(serversPath), probe.NewExecutor(), cfg.Settings)
	mon.Tracker = tracker.New(1)

	c := mon.RunCycle(context.WithoutCancel(cmd.Context()))
	if c.Skipped {
		return errors.New("targets file could not be re-read")
	}

	down := printResults(cmd.OutOrStdout(), c.Results)
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprint(cmd.OutOrStdout(), c.Report)
	if down > 0 {
		return fmt.Errorf("%d target(s) down", down)
	}
	return nil
}

func printResults(w io.Writer, results map[string]domain.ProbeResult) int {
	names := make([]string, 0, len(results))
	for n := range results {
		names = append(names, n)
	}
	sort.Strings(names)

	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	down := 0
	for _, n := range names {
		r := results[n]
		if r.IsUp() {
			line := ok("✔") + " " + n
			if r.LatencyMS != nil {
				line += fmt.Sprintf(" (%.0f ms)", *r.LatencyMS)
			}
			fmt.Fprintln(w, line)
			continue
		}
		down++
		fmt.Fprintf(w, "%s %s: %s\n", bad("✖"), n, r.ErrorDetail)
	}
	return down
}
