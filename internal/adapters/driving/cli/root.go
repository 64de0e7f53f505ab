// Package cli provides the fanslysync command line interface.
package cli

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driven"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driving"
	"github.com/custodia-labs/fanslysync/internal/logger"
)

var version = "dev"

var verbose bool

// timeNow is replaced in tests.
var timeNow = time.Now

// Services injected by the entrypoint. Commands report "not configured"
// when the one they need is nil.
var (
	appSettings      = domain.DefaultSettings()
	settingsDir      string
	configService    driving.ConfigService
	syncScheduler    driving.Scheduler
	accountAPI       driven.AccountAPI
	historyStore     driven.CycleHistoryStore
	snapshotExporter driven.SnapshotExporter
	metricsHandler   http.Handler
	watchPath        string
)

// Services groups everything the commands depend on.
type Services struct {
	Settings    domain.Settings
	SettingsDir string

	Config    driving.ConfigService
	Scheduler driving.Scheduler
	API       driven.AccountAPI
	History   driven.CycleHistoryStore

	// Exporter publishes snapshots for `export` without --out.
	Exporter driven.SnapshotExporter

	// MetricsHandler is served by `daemon` when metrics.addr is set.
	MetricsHandler http.Handler

	// WatchPath is the Config file watched by `daemon`; empty disables watching.
	WatchPath string
}

var rootCmd = &cobra.Command{
	Use:   "fanslysync",
	Short: "Keep a local mirror of a Fansly account's followers and subscribers",
	Long: `fanslysync fetches the followers and subscribers of a Fansly account,
computes what changed since the last sync and stores the result locally.

Get started:
  fanslysync init
  fanslysync token set
  fanslysync sync`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices installs the services the commands use.
func SetServices(s Services) {
	appSettings = s.Settings
	settingsDir = s.SettingsDir
	configService = s.Config
	syncScheduler = s.Scheduler
	accountAPI = s.API
	historyStore = s.History
	snapshotExporter = s.Exporter
	metricsHandler = s.MetricsHandler
	watchPath = s.WatchPath
}

// SetVersion sets the version reported by `fanslysync version`.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
