package driven

import (
	"context"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
)

// CycleHistoryStore keeps a log of completed cycles.
type CycleHistoryStore interface {
	// Record appends a cycle.
	Record(ctx context.Context, record domain.CycleRecord) error

	// Recent returns up to limit cycles, most recent first.
	Recent(ctx context.Context, limit int) ([]domain.CycleRecord, error)

	// Prune keeps only the most recent keep cycles.
	Prune(ctx context.Context, keep int) error
}
