package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/custodia-labs/fanslysync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driving"
	"github.com/custodia-labs/fanslysync/internal/core/services"
)

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	mu          sync.Mutex
	result      *domain.CycleResult
	err         error
	syncCalls   int
	started     chan struct{}
	stopped     bool
	reconfigs   int
	status      domain.SchedulerStatus
	startResult error
}

func (m *mockScheduler) Start(ctx context.Context) error {
	if m.started != nil {
		close(m.started)
	}
	<-ctx.Done()
	if m.startResult != nil {
		return m.startResult
	}
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockScheduler) Trigger(domain.Trigger) bool { return true }

func (m *mockScheduler) SyncNow(context.Context) (*domain.CycleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncCalls++
	return m.result, m.err
}

func (m *mockScheduler) Reconfigure(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reconfigs++
	return nil
}

func (m *mockScheduler) Status() domain.SchedulerStatus { return m.status }

// mockAccountAPI implements driven.AccountAPI for testing.
type mockAccountAPI struct {
	me       *domain.Me
	err      error
	lastCred string
}

func (m *mockAccountAPI) Me(_ context.Context, credential string) (*domain.Me, error) {
	m.lastCred = credential
	return m.me, m.err
}

func (m *mockAccountAPI) Accounts(context.Context, string, []string) (*domain.AccountInfoResponse, error) {
	return &domain.AccountInfoResponse{Success: true}, nil
}

func (m *mockAccountAPI) Followers(context.Context, string, string, int, int) ([]domain.Follower, error) {
	return nil, nil
}

func (m *mockAccountAPI) Subscribers(context.Context, string, int, int) ([]domain.Subscriber, error) {
	return nil, nil
}

// mockExporter implements driven.SnapshotExporter for testing.
type mockExporter struct {
	location string
	err      error
	got      *domain.SyncData
}

func (m *mockExporter) Export(_ context.Context, data domain.SyncData) (string, error) {
	m.got = &data
	return m.location, m.err
}

type testEnv struct {
	config    *services.ConfigService
	backend   *memory.ConfigBackend
	scheduler *mockScheduler
	api       *mockAccountAPI
	history   *memory.CycleHistory
	exporter  *mockExporter
}

// setupCLI installs fresh services and resets flag state.
func setupCLI(t *testing.T) *testEnv {
	t.Helper()

	old := Services{
		Settings:       appSettings,
		SettingsDir:    settingsDir,
		Config:         configService,
		Scheduler:      syncScheduler,
		API:            accountAPI,
		History:        historyStore,
		Exporter:       snapshotExporter,
		MetricsHandler: metricsHandler,
		WatchPath:      watchPath,
	}
	oldNow := timeNow

	env := &testEnv{
		backend:   memory.NewConfigBackend(),
		scheduler: &mockScheduler{},
		api:       &mockAccountAPI{},
		history:   memory.NewCycleHistory(),
		exporter:  &mockExporter{location: "https://paste.example/abc"},
	}
	env.config = services.NewConfigService(env.backend)

	SetServices(Services{
		Settings:    domain.DefaultSettings(),
		SettingsDir: t.TempDir(),
		Config:      env.config,
		Scheduler:   env.scheduler,
		API:         env.api,
		History:     env.history,
		Exporter:    env.exporter,
	})
	timeNow = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	syncJSON = false
	versionShort = false
	exportOut = ""
	historyLimit = 10
	tokenSetVerify = false
	configShowSnapshot = false

	t.Cleanup(func() {
		SetServices(old)
		timeNow = oldNow
		rootCmd.SetIn(nil)
	})
	return env
}

// runCLI executes the root command with args and returns its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// seedSnapshot stores a committed snapshot in the env's Config.
func seedSnapshot(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()
	_, err := env.config.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	err = env.config.Commit(ctx, driving.CommitRequest{
		Snapshot: domain.SyncData{
			Followers:   []domain.Follower{{FollowerID: "f1"}, {FollowerID: "f2"}},
			Subscribers: []domain.Subscriber{{ID: "s1", SubscriberID: "u1"}},
		},
		Cursor: "corr-1",
		Now:    time.UnixMilli(1_700_000_000_000),
	})
	if err != nil {
		t.Fatal(err)
	}
}
