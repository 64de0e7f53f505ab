package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driving"
)

// mockAccountAPI serves a fixed account with in-memory listings.
type mockAccountAPI struct {
	mu          sync.Mutex
	me          *domain.Me
	meErr       error
	followers   []domain.Follower
	subscribers []domain.Subscriber
	followErr   error
	subErr      error
	accounts    *domain.AccountInfoResponse
	accountsErr error
	panicOn     string
	calls       map[string]int
	credentials []string
}

func newMockAccountAPI(id string, followers []domain.Follower, subscribers []domain.Subscriber) *mockAccountAPI {
	return &mockAccountAPI{
		me: &domain.Me{
			Account: domain.AccountInfo{
				ID:              id,
				FollowCount:     int64(len(followers)),
				SubscriberCount: int64(len(subscribers)),
			},
			CorrelationID: "corr-" + id,
		},
		followers:   followers,
		subscribers: subscribers,
		calls:       make(map[string]int),
	}
}

func (m *mockAccountAPI) record(op, credential string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++
	m.credentials = append(m.credentials, credential)
	if m.panicOn == op {
		panic("boom in " + op)
	}
}

func (m *mockAccountAPI) callCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *mockAccountAPI) Me(_ context.Context, credential string) (*domain.Me, error) {
	m.record("me", credential)
	if m.meErr != nil {
		return nil, m.meErr
	}
	return m.me, nil
}

func (m *mockAccountAPI) Accounts(_ context.Context, credential string, _ []string) (*domain.AccountInfoResponse, error) {
	m.record("accounts", credential)
	if m.accountsErr != nil {
		return nil, m.accountsErr
	}
	if m.accounts != nil {
		return m.accounts, nil
	}
	return &domain.AccountInfoResponse{Success: true, Response: []domain.AccountInfo{m.me.Account}}, nil
}

func (m *mockAccountAPI) Followers(
	ctx context.Context, credential, _ string, offset, limit int,
) ([]domain.Follower, error) {
	m.record("followers", credential)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.followErr != nil {
		return nil, m.followErr
	}
	return page(m.followers, offset, limit), nil
}

func (m *mockAccountAPI) Subscribers(
	ctx context.Context, credential string, offset, limit int,
) ([]domain.Subscriber, error) {
	m.record("subscribers", credential)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.subErr != nil {
		return nil, m.subErr
	}
	return page(m.subscribers, offset, limit), nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// mockExporter records exported snapshots.
type mockExporter struct {
	url      string
	err      error
	exported []domain.SyncData
}

func (m *mockExporter) Export(_ context.Context, data domain.SyncData) (string, error) {
	m.exported = append(m.exported, data)
	return m.url, m.err
}

// mockFetcher returns queued results in order, repeating the last one.
type mockFetcher struct {
	mu      sync.Mutex
	results []domain.Result[driving.FetchedState]
	calls   int
	block   chan struct{}
	entered chan struct{}
}

func (m *mockFetcher) FetchAccountState(ctx context.Context, _ string) domain.Result[driving.FetchedState] {
	m.mu.Lock()
	m.calls++
	idx := m.calls - 1
	if idx >= len(m.results) {
		idx = len(m.results) - 1
	}
	res := m.results[idx]
	block, entered := m.block, m.entered
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return domain.Fail[driving.FetchedState](&domain.TransportError{Op: "fetch", Err: ctx.Err()})
		}
	}
	return res
}

func (m *mockFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func fetched(cursor string, at time.Time, followers ...string) domain.Result[driving.FetchedState] {
	data := domain.EmptySyncData()
	for _, id := range followers {
		data.Followers = append(data.Followers, domain.Follower{FollowerID: id})
	}
	return domain.Ok(driving.FetchedState{
		Snapshot:  data,
		Cursor:    cursor,
		Account:   domain.AccountInfo{ID: "acct"},
		FetchedAt: at,
	})
}

// recordingMetrics counts scheduler events.
type recordingMetrics struct {
	mu        sync.Mutex
	started   []domain.Trigger
	finished  []*domain.CycleResult
	coalesced []domain.Trigger
	states    []domain.SyncState
	backoffs  []time.Duration
}

func (m *recordingMetrics) CycleStarted(t domain.Trigger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, t)
}

func (m *recordingMetrics) CycleFinished(r *domain.CycleResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = append(m.finished, r)
}

func (m *recordingMetrics) TriggerCoalesced(t domain.Trigger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coalesced = append(m.coalesced, t)
}

func (m *recordingMetrics) StateChanged(s domain.SyncState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, s)
}

func (m *recordingMetrics) BackoffScheduled(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.backoffs = append(m.backoffs, d)
}

func (m *recordingMetrics) coalescedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.coalesced)
}

func followers(ids ...string) []domain.Follower {
	out := make([]domain.Follower, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Follower{FollowerID: id})
	}
	return out
}

func subscriber(id string, price int64) domain.Subscriber {
	return domain.Subscriber{
		ID:           id,
		SubscriberID: "acct-" + id,
		Status:       3,
		Price:        price,
	}
}

func manySubscribers(n int) []domain.Subscriber {
	out := make([]domain.Subscriber, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, subscriber(fmt.Sprintf("s%03d", i), 500))
	}
	return out
}
