package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driving"
	"github.com/custodia-labs/fanslysync/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.CycleRunner = (*SyncService)(nil)

// SyncService runs one cycle: load, fetch, diff, merge.
type SyncService struct {
	config  driving.ConfigService
	fetcher driving.AccountFetcher
	now     func() time.Time
}

// NewSyncService creates a new sync service.
func NewSyncService(config driving.ConfigService, fetcher driving.AccountFetcher) *SyncService {
	return &SyncService{
		config:  config,
		fetcher: fetcher,
		now:     time.Now,
	}
}

// RunCycle executes one cycle. Nothing is written unless every stage succeeds.
func (s *SyncService) RunCycle(
	ctx context.Context,
	trigger domain.Trigger,
	observe driving.StageObserver,
) *domain.CycleResult {
	if observe == nil {
		observe = func(domain.SyncState) {}
	}

	result := &domain.CycleResult{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		StartedAt: s.now(),
	}

	logger.Info("Starting %s sync %s", trigger, result.ID)

	outcome := domain.Await(func() (struct{}, error) {
		return struct{}{}, s.run(ctx, result, observe)
	})
	result.EndedAt = s.now()

	if outcome.Err != nil {
		result.Err = outcome.Err
		result.ReauthRequired = domain.IsAuth(outcome.Err)
		switch {
		case result.ReauthRequired:
			logger.Warn("Sync %s failed, token needs to be replaced: %v", result.ID, outcome.Err)
		case domain.IsShape(outcome.Err):
			logger.Warn("Sync %s aborted, snapshot unchanged: %v", result.ID, outcome.Err)
		default:
			logger.Warn("Sync %s failed: %v", result.ID, outcome.Err)
		}
		return result
	}

	logger.Info("Sync %s complete in %s: %s", result.ID, result.Duration().Round(time.Millisecond), result.Delta.Summary())
	return result
}

func (s *SyncService) run(ctx context.Context, result *domain.CycleResult, observe driving.StageObserver) error {
	observe(domain.StateFetching)

	cfg, err := s.config.Load(ctx)
	if err != nil {
		return err
	}

	fetched := s.fetcher.FetchAccountState(ctx, cfg.FanslyToken)
	if fetched.Err != nil {
		return fetched.Err
	}
	state := fetched.Value

	observe(domain.StateDiffing)
	delta := Diff(cfg.LastSyncData, state.Snapshot)

	observe(domain.StateMerging)
	committed := domain.Await(func() (struct{}, error) {
		return struct{}{}, s.config.Commit(ctx, driving.CommitRequest{
			BaseCursor:   cfg.SyncToken,
			BaseLastSync: cfg.LastSync,
			Snapshot:     state.Snapshot,
			Cursor:       state.Cursor,
			Now:          state.FetchedAt,
		})
	})
	if committed.Err != nil {
		if errors.Is(committed.Err, context.DeadlineExceeded) {
			return &domain.TransportError{Op: "commit", Err: committed.Err}
		}
		return committed.Err
	}

	result.Delta = delta
	result.Cursor = state.Cursor
	result.Followers = len(state.Snapshot.Followers)
	result.Subscribers = len(state.Snapshot.Subscribers)
	return nil
}
