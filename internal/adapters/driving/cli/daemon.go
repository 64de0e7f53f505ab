package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/fanslysync/internal/adapters/driven/metrics"
	"github.com/custodia-labs/fanslysync/internal/adapters/driving/watcher"
	"github.com/custodia-labs/fanslysync/internal/logger"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run automatic sync in the foreground",
	Long: `Runs the scheduler until interrupted. Cycles run every sync interval while
automatic sync is enabled; failures are retried with exponential backoff.

Edits to the Config file made by other fanslysync commands are picked up
without a restart. When metrics.addr is set, Prometheus metrics are served
on that address under /metrics.`,
	RunE: runDaemon,
}

// serveMetrics is replaced in tests.
var serveMetrics = metrics.Serve

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if syncScheduler == nil {
		return errors.New("sync service not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runDaemonContext(ctx, cmd)
}

func runDaemonContext(ctx context.Context, cmd *cobra.Command) error {
	var w *watcher.ConfigWatcher
	if watchPath != "" {
		var err error
		if w, err = watcher.New(watchPath, syncScheduler, 0); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return startScheduler(ctx) })

	if w != nil {
		g.Go(func() error { return w.Run(ctx) })
	}

	if addr := appSettings.Metrics.Addr; addr != "" && metricsHandler != nil {
		g.Go(func() error {
			if err := serveMetrics(ctx, addr, metricsHandler); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	cmd.Println("fanslysync daemon running; press Ctrl+C to stop.")
	logger.Info("Daemon started")

	err := g.Wait()
	if stopErr := syncScheduler.Stop(); stopErr != nil && err == nil {
		err = stopErr
	}

	logger.Info("Daemon stopped")
	cmd.Println("Stopped.")
	return err
}

// startScheduler runs the scheduler until ctx is done. Cancellation is a
// normal shutdown.
func startScheduler(ctx context.Context) error {
	err := syncScheduler.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
