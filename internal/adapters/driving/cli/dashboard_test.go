package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fanslysync/internal/adapters/driving/tui"
)

func stubDashboard(t *testing.T, fn func(ctx context.Context, ports *tui.Ports) error) {
	t.Helper()
	old := runDashboard
	runDashboard = fn
	t.Cleanup(func() { runDashboard = old })
}

func TestDashboard_WiresPortsAndStops(t *testing.T) {
	env := setupCLI(t)
	env.scheduler.started = make(chan struct{})

	var got *tui.Ports
	stubDashboard(t, func(_ context.Context, ports *tui.Ports) error {
		<-env.scheduler.started
		got = ports
		return nil
	})

	_, err := runCLI(t, "dashboard")

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Same(t, env.scheduler, got.Scheduler)
	assert.Same(t, env.config, got.Config)
	assert.Same(t, env.history, got.History)
	assert.True(t, env.scheduler.stopped)
}

func TestDashboard_ReturnsUIError(t *testing.T) {
	setupCLI(t)
	stubDashboard(t, func(context.Context, *tui.Ports) error {
		return errors.New("no tty")
	})

	_, err := runCLI(t, "dashboard")

	assert.EqualError(t, err, "no tty")
}

func TestDashboard_NotConfigured(t *testing.T) {
	setupCLI(t)
	syncScheduler = nil

	_, err := runCLI(t, "dashboard")

	assert.EqualError(t, err, "sync service not configured")
}
