package driven

import (
	"time"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

// SyncMetrics records scheduler activity.
type SyncMetrics interface {
	// CycleStarted is called when a cycle leaves Idle.
	CycleStarted(trigger domain.Trigger)

	// CycleFinished is called with the result of every cycle.
	CycleFinished(result *domain.CycleResult)

	// TriggerCoalesced is called when a trigger arrives while a cycle is in flight.
	TriggerCoalesced(trigger domain.Trigger)

	// StateChanged is called on every scheduler state transition.
	StateChanged(state domain.SyncState)

	// BackoffScheduled is called when a failed cycle schedules a retry.
	BackoffScheduled(delay time.Duration)
}
