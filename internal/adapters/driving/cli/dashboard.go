package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/fanslysync/internal/adapters/driving/tui"
	"github.com/custodia-labs/fanslysync/internal/logger"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Run automatic sync with a live terminal dashboard",
	Long: `Runs the scheduler like the daemon command and shows its state, the stored
snapshot size and recent cycles. Press s to sync now, a to toggle automatic
sync and q to quit.`,
	RunE: runDashboardCmd,
}

// runDashboard is replaced in tests.
var runDashboard = func(ctx context.Context, ports *tui.Ports) error {
	app, err := tui.NewApp(ports)
	if err != nil {
		return err
	}

	// Console log lines would corrupt the alternate screen; the file sink stays.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	return app.WithContext(ctx).Run()
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	if syncScheduler == nil {
		return errors.New("sync service not configured")
	}
	if configService == nil {
		return errors.New("config service not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ports := &tui.Ports{
		Scheduler: syncScheduler,
		Config:    configService,
		History:   historyStore,
	}

	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.Go(func() error { return startScheduler(ctx) })
	g.Go(func() error {
		defer cancel()
		return runDashboard(ctx, ports)
	})

	err := g.Wait()
	if stopErr := syncScheduler.Stop(); stopErr != nil && err == nil {
		err = stopErr
	}
	return err
}
