package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/fanslysync/internal/core/domain"
	"github.com/custodia-labs/fanslysync/internal/core/ports/driven"
)

// cycleHistory implements driven.CycleHistoryStore.
type cycleHistory struct {
	store *Store
}

var _ driven.CycleHistoryStore = (*cycleHistory)(nil)

// Record appends a cycle.
func (h *cycleHistory) Record(ctx context.Context, record domain.CycleRecord) error {
	if record.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := h.store.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, cycle_trigger, started_at, ended_at, success, error,
			reauth_required, summary, followers, subscribers)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, string(record.Trigger),
		record.StartedAt.UnixMilli(), record.EndedAt.UnixMilli(),
		boolToInt(record.Success), nullString(record.Error),
		boolToInt(record.ReauthRequired), record.Summary,
		record.Followers, record.Subscribers)

	if err != nil {
		return fmt.Errorf("recording cycle: %w", err)
	}
	return nil
}

// Recent returns up to limit cycles, most recent first.
func (h *cycleHistory) Recent(ctx context.Context, limit int) ([]domain.CycleRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := h.store.db.QueryContext(ctx, `
		SELECT id, cycle_trigger, started_at, ended_at, success, error,
			reauth_required, summary, followers, subscribers
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying cycle history: %w", err)
	}
	defer rows.Close()

	var records []domain.CycleRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		record, err := scanCycleRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cycle history: %w", err)
	}

	return records, nil
}

// Prune keeps only the most recent keep cycles.
func (h *cycleHistory) Prune(ctx context.Context, keep int) error {
	_, err := h.store.db.ExecContext(ctx, `
		DELETE FROM sync_runs
		WHERE id NOT IN (
			SELECT id FROM sync_runs ORDER BY started_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning cycle history: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

func scanCycleRecord(rows *sql.Rows) (*domain.CycleRecord, error) {
	var record domain.CycleRecord
	var trigger string
	var startedAt, endedAt int64
	var success, reauth int
	var errText sql.NullString

	if err := rows.Scan(&record.ID, &trigger, &startedAt, &endedAt, &success, &errText,
		&reauth, &record.Summary, &record.Followers, &record.Subscribers); err != nil {
		return nil, fmt.Errorf("scanning cycle record: %w", err)
	}

	record.Trigger = domain.Trigger(trigger)
	record.StartedAt = time.UnixMilli(startedAt)
	record.EndedAt = time.UnixMilli(endedAt)
	record.Success = success == 1
	record.ReauthRequired = reauth == 1
	if errText.Valid {
		record.Error = errText.String
	}
	return &record, nil
}

// nullString converts empty strings to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// boolToInt converts a bool to an int for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
