package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driven"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driving"
	"github.com/custodia-labs/fanslysync/internal/logger"
)

// Ensure AccountFetcher implements the interface.
var _ driving.AccountFetcher = (*AccountFetcher)(nil)

// DefaultPageSize is the listing page size the remote API accepts.
const DefaultPageSize = 100

// FetcherOptions tunes an AccountFetcher.
type FetcherOptions struct {
	// PageSize is the number of entries requested per listing call.
	PageSize int

	// Timeout bounds a whole fetch. Zero means no extra bound.
	Timeout time.Duration

	// Exporter is optional; when set, each snapshot is uploaded and its
	// location recorded in sync_data_url.
	Exporter driven.SnapshotExporter
}

// AccountFetcher reads the remote account and projects it into a snapshot.
type AccountFetcher struct {
	api      driven.AccountAPI
	exporter driven.SnapshotExporter
	pageSize int
	timeout  time.Duration
	now      func() time.Time
}

// NewAccountFetcher creates a fetcher over the given API.
func NewAccountFetcher(api driven.AccountAPI, opts FetcherOptions) *AccountFetcher {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &AccountFetcher{
		api:      api,
		exporter: opts.Exporter,
		pageSize: opts.PageSize,
		timeout:  opts.Timeout,
		now:      time.Now,
	}
}

// FetchAccountState performs one authenticated read of the account.
// It never panics and never returns a bare error: failures are
// domain.AuthError, domain.TransportError or domain.ShapeError.
func (f *AccountFetcher) FetchAccountState(ctx context.Context, credential string) domain.Result[driving.FetchedState] {
	if credential == "" {
		return domain.Fail[driving.FetchedState](&domain.AuthError{
			Op:  "fetch account state",
			Err: domain.ErrMissingCredential,
		})
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	return domain.Await(func() (driving.FetchedState, error) {
		return f.fetch(ctx, credential)
	})
}

func (f *AccountFetcher) fetch(ctx context.Context, credential string) (driving.FetchedState, error) {
	meRes := domain.Await(func() (*domain.Me, error) {
		return f.api.Me(ctx, credential)
	})
	if meRes.Err != nil {
		return driving.FetchedState{}, classify("get profile", meRes.Err)
	}
	me := meRes.Value
	if me == nil || me.Account.ID == "" {
		return driving.FetchedState{}, &domain.ShapeError{Op: "get profile", Detail: "missing account id"}
	}
	account, err := f.resolveAccount(ctx, credential, me.Account)
	if err != nil {
		return driving.FetchedState{}, err
	}

	logger.Info("Account %s has %d followers and %d subscribers", account.ID, account.FollowCount, account.SubscriberCount)

	followers, err := f.fetchFollowers(ctx, credential, account)
	if err != nil {
		return driving.FetchedState{}, err
	}

	subscribers, err := f.fetchSubscribers(ctx, credential, account)
	if err != nil {
		return driving.FetchedState{}, err
	}

	projectTiers(subscribers, account.SubscriptionTiers)

	fetchedAt := f.now()
	snapshot := Dedupe(domain.SyncData{
		Followers:   followers,
		Subscribers: subscribers,
	})

	cursor := me.CorrelationID
	if cursor == "" {
		cursor = fmt.Sprintf("%d", fetchedAt.UnixNano())
	}

	if f.exporter != nil {
		exported := domain.Await(func() (string, error) {
			return f.exporter.Export(ctx, snapshot)
		})
		if exported.Err != nil {
			logger.Warn("Snapshot export failed: %v", exported.Err)
		} else {
			snapshot.SyncDataURL = exported.Value
		}
	}

	logger.Info("Fetched %d followers and %d subscribers", len(snapshot.Followers), len(snapshot.Subscribers))

	return driving.FetchedState{
		Snapshot:  snapshot,
		Cursor:    cursor,
		Account:   account,
		FetchedAt: fetchedAt,
	}, nil
}

func (f *AccountFetcher) fetchFollowers(
	ctx context.Context,
	credential string,
	account domain.AccountInfo,
) ([]domain.Follower, error) {
	followers := make([]domain.Follower, 0)

	for offset := 0; int64(len(followers)) < account.FollowCount; offset += f.pageSize {
		logger.Debug("Fetching followers offset=%d (total: %d)", offset, account.FollowCount)

		page := domain.Await(func() ([]domain.Follower, error) {
			return f.api.Followers(ctx, credential, account.ID, offset, f.pageSize)
		})
		if page.Err != nil {
			return nil, classify("list followers", page.Err)
		}
		if len(page.Value) == 0 {
			logger.Warn("Follower listing ended at %d of %d", len(followers), account.FollowCount)
			break
		}
		followers = append(followers, page.Value...)
	}

	return followers, nil
}

func (f *AccountFetcher) fetchSubscribers(
	ctx context.Context,
	credential string,
	account domain.AccountInfo,
) ([]domain.Subscriber, error) {
	subscribers := make([]domain.Subscriber, 0)

	for offset := 0; int64(len(subscribers)) < account.SubscriberCount; offset += f.pageSize {
		logger.Debug("Fetching subscribers offset=%d (total: %d)", offset, account.SubscriberCount)

		page := domain.Await(func() ([]domain.Subscriber, error) {
			return f.api.Subscribers(ctx, credential, offset, f.pageSize)
		})
		if page.Err != nil {
			return nil, classify("list subscribers", page.Err)
		}
		if len(page.Value) == 0 {
			logger.Warn("Subscriber listing ended at %d of %d", len(subscribers), account.SubscriberCount)
			break
		}
		subscribers = append(subscribers, page.Value...)
	}

	return subscribers, nil
}

// resolveAccount reads the full account record, which carries the tier,
// plan and promo structure. An auth rejection fails the fetch; any other
// failure keeps the profile returned by /account/me.
func (f *AccountFetcher) resolveAccount(
	ctx context.Context,
	credential string,
	profile domain.AccountInfo,
) (domain.AccountInfo, error) {
	res := domain.Await(func() (*domain.AccountInfoResponse, error) {
		return f.api.Accounts(ctx, credential, []string{profile.ID})
	})
	if res.Err != nil {
		if domain.IsAuth(res.Err) {
			return domain.AccountInfo{}, res.Err
		}
		logger.Warn("Account lookup failed, using profile tiers: %v", res.Err)
		return profile, nil
	}
	if res.Value == nil || !res.Value.Success {
		logger.Warn("Account lookup returned no data, using profile tiers")
		return profile, nil
	}

	for _, acct := range res.Value.Response {
		if acct.ID != profile.ID {
			continue
		}
		if len(acct.SubscriptionTiers) > 0 {
			profile.SubscriptionTiers = acct.SubscriptionTiers
		}
		return profile, nil
	}
	logger.Warn("Account lookup did not include %s, using profile tiers", profile.ID)
	return profile, nil
}

// projectTiers fills tier name and colour on subscribers whose listing
// entry omitted them.
func projectTiers(subscribers []domain.Subscriber, tiers []domain.SubscriptionTier) {
	if len(tiers) == 0 {
		return
	}
	byID := make(map[string]domain.SubscriptionTier, len(tiers))
	for _, t := range tiers {
		byID[t.ID] = t
	}
	for i := range subscribers {
		tier, ok := byID[subscribers[i].SubscriptionTierID]
		if !ok {
			continue
		}
		if subscribers[i].SubscriptionTierName == "" {
			subscribers[i].SubscriptionTierName = tier.Name
		}
		if subscribers[i].SubscriptionTierColor == "" {
			subscribers[i].SubscriptionTierColor = tier.Color
		}
	}
}

// classify keeps typed errors and maps anything else onto TransportError,
// which covers deadlines and cancellations from the fetch bound.
func classify(op string, err error) error {
	if domain.IsAuth(err) || domain.IsTransport(err) || domain.IsShape(err) || errors.Is(err, domain.ErrPanic) {
		return err
	}
	return &domain.TransportError{Op: op, Err: err}
}
