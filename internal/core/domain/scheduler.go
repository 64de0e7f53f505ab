package domain

import "time"

// SyncState is the scheduler's position in the sync state machine.
type SyncState string

// Scheduler states. A cycle moves Idle -> Fetching -> Diffing -> Merging -> Idle,
// or into Errored from any working state.
const (
	StateIdle     SyncState = "idle"
	StateFetching SyncState = "fetching"
	StateDiffing  SyncState = "diffing"
	StateMerging  SyncState = "merging"
	StateErrored  SyncState = "errored"
)

// InFlight reports whether a cycle is executing in this state.
func (s SyncState) InFlight() bool {
	return s == StateFetching || s == StateDiffing || s == StateMerging
}

// String returns the string representation.
func (s SyncState) String() string {
	return string(s)
}

// Trigger identifies what started a cycle.
type Trigger string

// Cycle triggers.
const (
	TriggerTimer  Trigger = "timer"
	TriggerManual Trigger = "manual"
	TriggerRetry  Trigger = "retry"
)

// CycleResult is the outcome of one synchronisation cycle.
type CycleResult struct {
	// ID uniquely identifies the cycle in logs.
	ID string

	// Trigger is what started the cycle.
	Trigger Trigger

	// StartedAt is when the cycle started.
	StartedAt time.Time

	// EndedAt is when the cycle completed.
	EndedAt time.Time

	// Delta is the change merged by a successful cycle.
	Delta Delta

	// Cursor is the sync token committed by a successful cycle.
	Cursor string

	// Followers and Subscribers are the sizes of the committed snapshot.
	Followers   int
	Subscribers int

	// Err is the failure, nil on success.
	Err error

	// ReauthRequired is set when the credential was rejected.
	ReauthRequired bool
}

// Success reports whether the cycle merged.
func (r *CycleResult) Success() bool {
	return r != nil && r.Err == nil
}

// Duration returns how long the cycle ran.
func (r *CycleResult) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// BackoffInitial is the first delay after a failed cycle.
	BackoffInitial time.Duration

	// BackoffMax caps the delay between retries.
	BackoffMax time.Duration

	// BackoffMultiplier grows the delay after each consecutive failure.
	BackoffMultiplier float64

	// BackoffJitter randomises each delay by up to this fraction.
	BackoffJitter float64
}

// DefaultSchedulerConfig returns sensible defaults for the scheduler.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		BackoffInitial:    30 * time.Second,
		BackoffMax:        30 * time.Minute,
		BackoffMultiplier: 2,
		BackoffJitter:     0.2,
	}
}

// SchedulerStatus is a point-in-time view of the scheduler.
type SchedulerStatus struct {
	State               SyncState
	Running             bool
	NextRun             time.Time
	ConsecutiveFailures int
	ReauthRequired      bool
	LastResult          *CycleResult
}

// CycleRecord is the persisted summary of one cycle.
type CycleRecord struct {
	ID             string
	Trigger        Trigger
	StartedAt      time.Time
	EndedAt        time.Time
	Success        bool
	Error          string
	ReauthRequired bool

	// Summary is Delta.Summary() for a successful cycle.
	Summary     string
	Followers   int
	Subscribers int
}

// NewCycleRecord summarises a cycle result for history.
func NewCycleRecord(r *CycleResult) CycleRecord {
	rec := CycleRecord{
		ID:             r.ID,
		Trigger:        r.Trigger,
		StartedAt:      r.StartedAt,
		EndedAt:        r.EndedAt,
		Success:        r.Success(),
		ReauthRequired: r.ReauthRequired,
		Followers:      r.Followers,
		Subscribers:    r.Subscribers,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	} else {
		rec.Summary = r.Delta.Summary()
	}
	return rec
}
