package tui

import (
	"context"
	"sync"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

// mockScheduler implements driving.Scheduler for testing.
type mockScheduler struct {
	mu        sync.Mutex
	result    *domain.CycleResult
	err       error
	syncCalls int
	reconfigs int
	status    domain.SchedulerStatus
}

func (m *mockScheduler) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error { return nil }

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
