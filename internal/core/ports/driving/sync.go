package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

// FetchedState is the outcome of one successful fetch.
type FetchedState struct {
	Snapshot  domain.SyncData
	Cursor    string
	Account   domain.AccountInfo
	FetchedAt time.Time
}

// AccountFetcher reads the remote account state with a credential.
type AccountFetcher interface {
	FetchAccountState(ctx context.Context, credential string) domain.Result[FetchedState]
}

// StageObserver is told when a cycle moves between stages.
type StageObserver func(state domain.SyncState)

// CycleRunner executes exactly one synchronisation cycle.
type CycleRunner interface {
	// RunCycle never returns a nil result; failures are reported in
	// CycleResult.Err.
	RunCycle(ctx context.Context, trigger domain.Trigger, observe StageObserver) *domain.CycleResult
}
