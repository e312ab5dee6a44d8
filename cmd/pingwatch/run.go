package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/pingwatch/internal/config"
	"github.com/hamed0406/pingwatch/internal/display"
	"github.com/hamed0406/pingwatch/internal/httpapi"
	"github.com/hamed0406/pingwatch/internal/logging"
	"github.com/hamed0406/pingwatch/internal/notify"
	"github.com/hamed0406/pingwatch/internal/probe"
	"github.com/hamed0406/pingwatch/internal/ratelimit"
	"github.com/hamed0406/pingwatch/internal/repo/memory"
	"github.com/hamed0406/pingwatch/internal/scheduler"
)

const (
	apiRatePerMin = 120
	apiBurst      = 60
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start monitoring",
	Long: `Start the monitor loop.

Both configuration files are validated first; any error there is fatal.
Later failures to re-read the targets file only skip that cycle.

The monitor runs until interrupted (Ctrl+C) or it receives SIGTERM. A cycle
that is already probing is finished before exiting.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("silent", false, "do not draw the results table")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	serversPath, settingsPath := configPaths(cmd)
	silent, _ := cmd.Flags().GetBool("silent")

	cfg, err := config.LoadSettings(settingsPath)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	specs, err := config.LoadTargets(serversPath)
	if err != nil {
		return fmt.Errorf("targets: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("config_loaded",
		zap.String("servers", serversPath),
		zap.Int("targets", len(specs)),
		zap.Bool("silent", silent),
		zap.Bool("status_api", cfg.StatusAddr != ""),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := memory.New()
	limiter := ratelimit.PerMinute(cfg.NotifyRatePerMinute, cfg.NotifyBurst)

	mon := scheduler.NewMonitor(logger, config.NewFileSource(serversPath), probe.NewExecutor(), cfg.Settings)
	mon.Notifier = notify.NewDispatcher(logger, notify.NewTelegram(), cfg.NotifyChatID, cfg.NotifyToken, limiter)
	mon.Store = store
	if !silent {
		mon.Display = display.NewTerminal()
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.StatusAddr != "" {
		api := httpapi.NewServer(logger, store)
		g.Go(func() error {
			return api.ListenAndServe(gctx, cfg.StatusAddr, api.Router(cfg.StatusAPIKey, apiRatePerMin, apiBurst))
		})
	}
	g.Go(func() error {
		return mon.Run(gctx)
	})

	err = g.Wait()
	logger.Info("shutdown_complete", zap.Error(err))
	return err
}
