package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driven"
)

// Ensure CycleHistory implements the interface.
var _ driven.CycleHistoryStore = (*CycleHistory)(nil)

// CycleHistory is an in-memory implementation of driven.CycleHistoryStore.
type CycleHistory struct {
	mu      sync.RWMutex
	records []domain.CycleRecord
}

// NewCycleHistory creates an empty history.
func NewCycleHistory() *CycleHistory {
	return &CycleHistory{}
}

// Record appends a cycle.
func (h *CycleHistory) Record(_ context.Context, record domain.CycleRecord) error {
	if record.ID == "" {
		return domain.ErrInvalidInput
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
	return nil
}

// Recent returns up to limit cycles, most recent first.
func (h *CycleHistory) Recent(_ context.Context, limit int) ([]domain.CycleRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]domain.CycleRecord, len(h.records))
	copy(out, h.records)
	sortRecent(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Prune keeps only the most recent keep cycles.
func (h *CycleHistory) Prune(_ context.Context, keep int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.records) <= keep {
		return nil
	}
	sortRecent(h.records)
	h.records = append([]domain.CycleRecord(nil), h.records[:keep]...)
	return nil
}

func sortRecent(records []domain.CycleRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
}
