package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

// ConfigService owns the persisted Config record.
type ConfigService interface {
	// Load reads the Config, creating it on first use and applying
	// pending schema migrations.
	Load(ctx context.Context) (*domain.Config, error)

	// Commit merges the outcome of a successful cycle.
	Commit(ctx context.Context, req CommitRequest) error

	// Update applies a user edit (token, toggles, interval).
	Update(ctx context.Context, fn func(*domain.Config) error) (*domain.Config, error)

	// ConsumeFirstRun reports whether this is the first run and clears the flag.
	ConsumeFirstRun(ctx context.Context) (bool, error)

	// Path describes where the Config is stored.
	Path() string
}

// CommitRequest carries everything a cycle writes, plus the base it
// started from so that a moved record is detected.
type CommitRequest struct {
	// BaseCursor and BaseLastSync are the values loaded at cycle start.
	BaseCursor   string
	BaseLastSync int64

	Snapshot domain.SyncData
	Cursor   string

	// Now becomes last_sync; it is the time the snapshot was fetched.
	Now time.Time
}
