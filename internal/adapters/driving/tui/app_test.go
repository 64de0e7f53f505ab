package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fanslysync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/fanslysync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/services"
)

type testApp struct {
	app       *App
	scheduler *mockScheduler
	config    *services.ConfigService
	history   *memory.CycleHistory
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	scheduler := &mockScheduler{status: domain.SchedulerStatus{State: domain.StateIdle, Running: true}}
	config := services.NewConfigService(memory.NewConfigBackend())
	history := memory.NewCycleHistory()

	app, err := NewApp(&Ports{Scheduler: scheduler, Config: config, History: history})
	require.NoError(t, err)
	app.WithContext(context.Background())

	return &testApp{app: app, scheduler: scheduler, config: config, history: history}
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewApp_RequiresPorts(t *testing.T) {
	_, err := NewApp(nil)
	assert.ErrorIs(t, err, ErrMissingScheduler)

	_, err = NewApp(&Ports{Scheduler: &mockScheduler{}})
	assert.ErrorIs(t, err, ErrMissingConfigService)
}

func TestApp_InitReturnsCommands(t *testing.T) {
	ta := newTestApp(t)
	assert.NotNil(t, ta.app.Init())
}

func TestApp_WindowSize(t *testing.T) {
	ta := newTestApp(t)
	assert.False(t, ta.app.Ready())
	assert.Equal(t, "Initialising...", ta.app.View())

	ta.app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.True(t, ta.app.Ready())
	assert.Equal(t, 120, ta.app.Bar().Width())
}

func TestApp_LoadReadsState(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	require.NoError(t, ta.history.Record(ctx, domain.CycleRecord{
		ID:        "c1",
		Trigger:   domain.TriggerManual,
		StartedAt: time.Now().Add(-time.Second),
		EndedAt:   time.Now(),
		Success:   true,
		Summary:   "+1 follower",
	}))

	msg := ta.app.load()()
	loaded, ok := msg.(messages.SnapshotLoaded)
	require.True(t, ok)
	require.NoError(t, loaded.Err)
	require.NotNil(t, loaded.Config)
	assert.Len(t, loaded.Recent, 1)

	ta.app.Update(loaded)
	ta.app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, domain.StateIdle, ta.app.Status().State)
	assert.NotNil(t, ta.app.Config())
	view := ta.app.View()
	assert.Contains(t, view, "fanslysync dashboard")
	assert.Contains(t, view, "+1 follower")
}

func TestApp_LoadError(t *testing.T) {
	ta := newTestApp(t)

	ta.app.Update(messages.SnapshotLoaded{Err: errors.New("disk gone")})

	assert.True(t, ta.app.Bar().IsError())
	assert.Equal(t, "disk gone", ta.app.Bar().Message())
}

func TestApp_SyncKeyRunsCycle(t *testing.T) {
	ta := newTestApp(t)
	ta.scheduler.result = &domain.CycleResult{
		Trigger: domain.TriggerManual,
		Delta:   domain.Delta{AddedFollowers: []string{"a"}},
	}

	_, cmd := ta.app.Update(keyPress('s'))
	require.NotNil(t, cmd)
	assert.True(t, ta.app.Syncing())

	// A second press while syncing is ignored.
	_, again := ta.app.Update(keyPress('s'))
	assert.Nil(t, again)

	finished, ok := cmd().(messages.SyncFinished)
	require.True(t, ok)
	assert.Equal(t, 1, ta.scheduler.syncCalls)

	ta.app.Update(finished)
	assert.False(t, ta.app.Syncing())
	assert.False(t, ta.app.Bar().IsError())
	assert.Contains(t, ta.app.Bar().Message(), "sync complete")
}

func TestApp_SyncFinishedOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		msg       messages.SyncFinished
		wantError bool
		wantText  string
	}{
		{
			name:     "in progress",
			msg:      messages.SyncFinished{Err: domain.ErrSyncInProgress},
			wantText: "already running",
		},
		{
			name:      "error",
			msg:       messages.SyncFinished{Err: errors.New("boom")},
			wantError: true,
			wantText:  "boom",
		},
		{
			name: "reauth",
			msg: messages.SyncFinished{Result: &domain.CycleResult{
				Err:            &domain.AuthError{Op: "me", StatusCode: 401},
				ReauthRequired: true,
			}},
			wantError: true,
			wantText:  "token set",
		},
		{
			name: "failed cycle",
			msg: messages.SyncFinished{Result: &domain.CycleResult{
				Err: &domain.ShapeError{Op: "followers", Detail: "bad page"},
			}},
			wantError: true,
			wantText:  "bad page",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t)
			ta.app.Update(tt.msg)
			assert.Equal(t, tt.wantError, ta.app.Bar().IsError())
			assert.Contains(t, ta.app.Bar().Message(), tt.wantText)
		})
	}
}

func TestApp_ToggleAuto(t *testing.T) {
	ta := newTestApp(t)
	ctx := context.Background()
	before, err := ta.config.Load(ctx)
	require.NoError(t, err)

	_, cmd := ta.app.Update(keyPress('a'))
	require.NotNil(t, cmd)

	toggled, ok := cmd().(messages.AutoSyncToggled)
	require.True(t, ok)
	require.NoError(t, toggled.Err)
	assert.Equal(t, !before.AutoSyncEnabled, toggled.Enabled)
	assert.Equal(t, 1, ta.scheduler.reconfigs)

	after, err := ta.config.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, toggled.Enabled, after.AutoSyncEnabled)

	ta.app.Update(toggled)
	assert.Contains(t, ta.app.Bar().Message(), "auto sync")
}

func TestApp_QuitAndHelp(t *testing.T) {
	ta := newTestApp(t)

	_, cmd := ta.app.Update(keyPress('?'))
	assert.Nil(t, cmd)
	assert.True(t, ta.app.help.ShowAll)

	_, cmd = ta.app.Update(keyPress('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestApp_TickReloads(t *testing.T) {
	ta := newTestApp(t)
	_, cmd := ta.app.Update(messages.Tick{})
	assert.NotNil(t, cmd)
}

func TestApp_WithRefreshInterval(t *testing.T) {
	ta := newTestApp(t)
	ta.app.WithRefreshInterval(0)
	assert.Equal(t, DefaultRefreshInterval, ta.app.refresh)
	ta.app.WithRefreshInterval(5 * time.Second)
	assert.Equal(t, 5*time.Second, ta.app.refresh)
}
