// Command fanslysync keeps a local mirror of a Fansly account's followers
// and subscribers.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/fanslysync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/fanslysync/internal/adapters/driven/export"
	"github.com/custodia-labs/fanslysync/internal/adapters/driven/fansly"
	"github.com/custodia-labs/fanslysync/internal/adapters/driven/metrics"
	"github.com/custodia-labs/fanslysync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/fanslysync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/fanslysync/internal/adapters/driving/cli"
	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driven"
	"github.com/custodia-labs/fanslysync/internal/core/services"
	"github.com/custodia-labs/fanslysync/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// homeEnv overrides the settings directory.
const homeEnv = "FANSLYSYNC_HOME"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	dir := os.Getenv(homeEnv)
	if dir == "" {
		var err error
		dir, err = file.DefaultDir()
		if err != nil {
			return report(err)
		}
	}

	settings, err := file.LoadSettings(dir)
	if err != nil {
		return report(err)
	}
	if settings.Storage.Dir == "" {
		settings.Storage.Dir = dir
	}

	if err := logger.Configure(logger.Options{
		Level:      settings.Log.Level,
		File:       settings.Log.File,
		MaxSizeMB:  settings.Log.MaxSizeMB,
		MaxBackups: settings.Log.MaxBackups,
		MaxAgeDays: settings.Log.MaxAgeDays,
	}); err != nil {
		return report(err)
	}
	defer logger.Close()

	store, err := openStorage(settings)
	if err != nil {
		return report(err)
	}
	defer store.Close()

	configs := services.NewConfigService(store.backend)

	client, err := fansly.NewClient(fansly.Options{
		BaseURL:           settings.API.BaseURL,
		Timeout:           settings.API.Timeout,
		RequestsPerSecond: settings.API.RequestsPerSecond,
		UserAgent:         settings.API.UserAgent,
	})
	if err != nil {
		return report(err)
	}

	paste, err := export.NewPasteExporter(settings.Export.Endpoint, settings.API.UserAgent, nil)
	if err != nil {
		return report(err)
	}

	fetcherOpts := services.FetcherOptions{
		PageSize: settings.API.PageSize,
		Timeout:  settings.API.Timeout,
	}
	if settings.Export.Enabled {
		fetcherOpts.Exporter = paste
	}

	provider := metrics.NewProvider()
	fetcher := services.NewAccountFetcher(client, fetcherOpts)
	runner := services.NewSyncService(configs, fetcher)
	scheduler := services.NewScheduler(settings.Scheduler.SchedulerConfig(), runner, configs, provider)
	scheduler.SetHistory(store.history)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Settings:       settings,
		SettingsDir:    dir,
		Config:         configs,
		Scheduler:      scheduler,
		API:            client,
		History:        store.history,
		Exporter:       paste,
		MetricsHandler: provider.Handler(),
		WatchPath:      store.watchPath,
	})

	return cli.Execute()
}

// storage is the selected Config backend and the cycle history.
type storage struct {
	backend   driven.ConfigBackend
	history   driven.CycleHistoryStore
	watchPath string
	closer    io.Closer
}

func (s *storage) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// openStorage builds the backend named by storage.backend. The file
// backend keeps its history in the SQLite database next to it.
func openStorage(settings domain.Settings) (*storage, error) {
	switch settings.Storage.Backend {
	case domain.BackendMemory:
		return &storage{
			backend: memory.NewConfigBackend(),
			history: memory.NewCycleHistory(),
		}, nil

	case domain.BackendSQLite:
		db, err := sqlite.NewStore(settings.Storage.Dir)
		if err != nil {
			return nil, err
		}
		return &storage{
			backend: db.ConfigBackend(),
			history: db.CycleHistory(),
			closer:  db,
		}, nil

	case domain.BackendFile, "":
		backend, err := file.NewConfigBackend(settings.Storage.Dir)
		if err != nil {
			return nil, err
		}
		db, err := sqlite.NewStore(settings.Storage.Dir)
		if err != nil {
			return nil, err
		}
		return &storage{
			backend:   backend,
			history:   db.CycleHistory(),
			watchPath: backend.Path(),
			closer:    db,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, settings.Storage.Backend)
	}
}

// report prints a startup error; command errors are printed by cobra.
func report(err error) error {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return err
}
