// Package messages defines Bubbletea message types for the dashboard.
package messages

import (
	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

// Tick asks the dashboard to refresh.
type Tick struct{}

// SnapshotLoaded carries a fresh view of the engine state.
type SnapshotLoaded struct {
	Status domain.SchedulerStatus
	Config *domain.Config
	Recent []domain.CycleRecord
	Err    error
}

// SyncFinished is sent when a manual cycle completes.
type SyncFinished struct {
	Result *domain.CycleResult
	Err    error
}

// AutoSyncToggled is sent after the auto-sync flag was written.
type AutoSyncToggled struct {
	Enabled bool
	Err     error
}
