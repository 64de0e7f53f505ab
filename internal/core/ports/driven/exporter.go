package driven

import (
	"context"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

// SnapshotExporter publishes a snapshot somewhere it can be retrieved later.
type SnapshotExporter interface {
	// Export stores the snapshot and returns its location.
	Export(ctx context.Context, data domain.SyncData) (string, error)
}
