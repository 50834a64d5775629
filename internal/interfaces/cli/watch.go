package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gbsl/edsync/internal/core/reconcile"
	"github.com/gbsl/edsync/internal/infrastructure/scheduler"
	"github.com/gbsl/edsync/internal/infrastructure/watcher"
)

// WatchFlags holds command-line flags for the watch command
type WatchFlags struct {
	Debounce    time.Duration
	Schedule    string
	MetricsAddr string
}

// NewWatchCommand creates the watch command
func NewWatchCommand(container *CLIContainer) *cobra.Command {
	flags := &WatchFlags{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-apply the remote configuration when its location setting changes",
		Long: `Watch the settings files and re-apply the remote configuration whenever the
remote location setting changes. Optionally resync on a cron schedule and
expose Prometheus metrics.

Examples:
  edsync watch
  edsync watch --schedule "@every 1h"
  edsync watch --metrics-addr :9464`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg := container.Config; cfg != nil {
				if !cmd.Flags().Changed("debounce") && cfg.Watch.Debounce > 0 {
					flags.Debounce = cfg.Watch.Debounce
				}
				if !cmd.Flags().Changed("schedule") {
					flags.Schedule = cfg.Watch.Schedule
				}
				if !cmd.Flags().Changed("metrics-addr") {
					flags.MetricsAddr = cfg.Watch.MetricsAddr
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runWatch(ctx, container, flags)
		},
	}

	cmd.Flags().DurationVar(&flags.Debounce, "debounce", 500*time.Millisecond, "Quiet period before reacting to file changes")
	cmd.Flags().StringVar(&flags.Schedule, "schedule", "", "Cron schedule for periodic resyncs (e.g. \"@every 1h\")")
	cmd.Flags().StringVar(&flags.MetricsAddr, "metrics-addr", "", "Listen address for the Prometheus /metrics endpoint")

	return cmd
}

// runWatch blocks until ctx is done
func runWatch(ctx context.Context, container *CLIContainer, flags *WatchFlags) error {
	logger := container.Logger

	w, err := watcher.New(container.Settings, container.Settings.Paths(), flags.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	g, gctx := errgroup.WithContext(ctx)

	if flags.Schedule != "" {
		s := scheduler.NewScheduler(logger)
		err := s.Schedule(gctx, flags.Schedule, func(ctx context.Context) {
			container.Configure.Sync(ctx, reconcile.TriggerSchedule)
		})
		if err != nil {
			return err
		}
		s.Start()
		defer s.Stop()
	}

	g.Go(func() error {
		return w.Run(gctx, func(ctx context.Context, keys []string) {
			report := container.Configure.SettingsChanged(ctx, keys)
			logger.LogDebug("settings change handled", map[string]interface{}{
				"keys":    keys,
				"skipped": report.Skipped,
				"updated": report.Outcomes.UpdatedCount(),
			})
		})
	})

	if flags.MetricsAddr != "" && container.Metrics != nil {
		g.Go(func() error {
			return container.Metrics.Serve(gctx, flags.MetricsAddr)
		})
	}

	logger.LogInfo("watching settings", map[string]interface{}{
		"files":    container.Settings.Paths(),
		"schedule": flags.Schedule,
		"metrics":  flags.MetricsAddr,
	})

	return g.Wait()
}
