package driving

import (
	"context"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

// Scheduler runs timed and manual synchronisation cycles.
type Scheduler interface {
	// Start arms the timer and blocks until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop disarms the timer and waits for an in-flight cycle to finish.
	Stop() error

	// Trigger starts a cycle in the background. It returns false when a
	// cycle is already in flight and the trigger was coalesced.
	Trigger(trigger domain.Trigger) bool

	// SyncNow runs a manual cycle and waits for it.
	// Returns domain.ErrSyncInProgress when a cycle is already in flight.
	SyncNow(ctx context.Context) (*domain.CycleResult, error)

	// Reconfigure re-reads the Config after an external edit.
	Reconfigure(ctx context.Context) error

	// Status returns a point-in-time view of the scheduler.
	Status() domain.SchedulerStatus
}
