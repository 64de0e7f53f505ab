package driven

import (
	"context"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

// AccountAPI performs authenticated reads against the remote service.
// Implementations map failures onto domain.AuthError, domain.TransportError
// and domain.ShapeError.
type AccountAPI interface {
	// Me returns the account the credential belongs to.
	Me(ctx context.Context, credential string) (*domain.Me, error)

	// Accounts looks up accounts by id.
	Accounts(ctx context.Context, credential string, ids []string) (*domain.AccountInfoResponse, error)

	// Followers returns one page of followers.
	Followers(ctx context.Context, credential, accountID string, offset, limit int) ([]domain.Follower, error)

	// Subscribers returns one page of active and expired subscriptions.
	Subscribers(ctx context.Context, credential string, offset, limit int) ([]domain.Subscriber, error)
}
