package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"weekendly/internal/domain/activity"
	"weekendly/internal/domain/plan"
	"weekendly/internal/repository"
)

// ScheduledRepository persists scheduled activities in the durable cache.
type ScheduledRepository struct {
	db *DB
}

// NewScheduledRepository creates a ScheduledRepository.
func NewScheduledRepository(db *DB) *ScheduledRepository {
	return &ScheduledRepository{db: db}
}

const scheduledColumns = `
	id, weekend_key, day, start_slot, end_slot, is_main, is_blocked,
	parent_id, spans_duration, notes, completed, payload,
	created_at, updated_at, clock, sync_status`

// Put upserts a scheduled activity. Missing timestamps are stamped and a
// missing sync status defaults to pending, so UI-path writes always land as
// pending until a sync pass confirms them.
func (r *ScheduledRepository) Put(ctx context.Context, entry *plan.ScheduledActivity) error {
	now := time.Now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = now
	}
	if entry.SyncStatus == "" {
		entry.SyncStatus = plan.SyncStatusPending
	}

	payload, err := json.Marshal(entry.Activity)
	if err != nil {
		return fmt.Errorf("failed to encode activity payload: %w", err)
	}

	query := `
		INSERT INTO scheduled_activities (` + scheduledColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			weekend_key = excluded.weekend_key,
			day = excluded.day,
			start_slot = excluded.start_slot,
			end_slot = excluded.end_slot,
			is_main = excluded.is_main,
			is_blocked = excluded.is_blocked,
			parent_id = excluded.parent_id,
			spans_duration = excluded.spans_duration,
			notes = excluded.notes,
			completed = excluded.completed,
			payload = excluded.payload,
			updated_at = excluded.updated_at,
			clock = excluded.clock,
			sync_status = excluded.sync_status
	`

	_, err = r.db.ExecContext(ctx, query, scheduledArgs(entry, payload)...)
	if err != nil {
		return fmt.Errorf("failed to put scheduled activity: %w", err)
	}
	return nil
}

func scheduledArgs(entry *plan.ScheduledActivity, payload []byte) []any {
	var parentID *string
	if entry.ParentID != "" {
		parentID = &entry.ParentID
	}
	return []any{
		entry.ScheduledID,
		entry.WeekendKey,
		entry.Day,
		entry.StartSlot,
		entry.EndSlot,
		entry.IsMain,
		entry.IsBlocked,
		parentID,
		entry.SpansDuration,
		entry.Notes,
		entry.Completed,
		string(payload),
		entry.CreatedAt,
		entry.UpdatedAt,
		entry.Clock,
		entry.SyncStatus,
	}
}

// Get retrieves a scheduled activity by id.
func (r *ScheduledRepository) Get(ctx context.Context, id string) (*plan.ScheduledActivity, error) {
	query := `SELECT ` + scheduledColumns + ` FROM scheduled_activities WHERE id = ?`

	entry, err := scanScheduled(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled activity: %w", err)
	}
	return entry, nil
}

// Remove deletes a scheduled activity and any blocked continuation entries
// that reference it as their parent.
func (r *ScheduledRepository) Remove(ctx context.Context, id string) error {
	query := `DELETE FROM scheduled_activities WHERE id = ? OR parent_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, id)
	if err != nil {
		return fmt.Errorf("failed to remove scheduled activity: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns every scheduled activity ordered by creation time.
func (r *ScheduledRepository) List(ctx context.Context) ([]plan.ScheduledActivity, error) {
	query := `SELECT ` + scheduledColumns + ` FROM scheduled_activities ORDER BY created_at ASC`
	return r.queryScheduled(ctx, query)
}

// ListForDay returns scheduled activities for one day.
func (r *ScheduledRepository) ListForDay(ctx context.Context, day plan.Day) ([]plan.ScheduledActivity, error) {
	query := `SELECT ` + scheduledColumns + ` FROM scheduled_activities WHERE day = ? ORDER BY created_at ASC`
	return r.queryScheduled(ctx, query, day)
}

func (r *ScheduledRepository) queryScheduled(ctx context.Context, query string, args ...any) ([]plan.ScheduledActivity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled activities: %w", err)
	}
	defer rows.Close()

	var entries []plan.ScheduledActivity
	for rows.Next() {
		entry, err := scanScheduled(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled activity: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scheduled activity rows: %w", err)
	}
	return entries, nil
}

// ReplaceAll transactionally swaps the full scheduled-activity set. Incoming
// entries keep their timestamps and sync metadata untouched; a failed replace
// rolls back to the previous state.
func (r *ScheduledRepository) ReplaceAll(ctx context.Context, entries []plan.ScheduledActivity) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scheduled_activities`); err != nil {
		return fmt.Errorf("failed to clear scheduled activities: %w", err)
	}

	insert := `INSERT INTO scheduled_activities (` + scheduledColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i := range entries {
		payload, err := json.Marshal(entries[i].Activity)
		if err != nil {
			return fmt.Errorf("failed to encode activity payload: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insert, scheduledArgs(&entries[i], payload)...); err != nil {
			return fmt.Errorf("failed to insert scheduled activity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replace: %w", err)
	}
	return nil
}

// MarkAllSynced flips every pending entry to synced after a successful pass.
func (r *ScheduledRepository) MarkAllSynced(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE scheduled_activities SET sync_status = ? WHERE sync_status = ?`,
		plan.SyncStatusSynced, plan.SyncStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark synced: %w", err)
	}
	return nil
}

// LastModified returns the greatest updated_at, or the zero time when empty.
// The column is read directly rather than through MAX(): aggregate columns
// lose their declared type and come back from the driver as strings.
func (r *ScheduledRepository) LastModified(ctx context.Context) (time.Time, error) {
	var ts time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT updated_at FROM scheduled_activities ORDER BY updated_at DESC LIMIT 1`).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last modified: %w", err)
	}
	return ts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheduled(row rowScanner) (*plan.ScheduledActivity, error) {
	var (
		entry    plan.ScheduledActivity
		parentID sql.NullString
		payload  string
	)
	err := row.Scan(
		&entry.ScheduledID,
		&entry.WeekendKey,
		&entry.Day,
		&entry.StartSlot,
		&entry.EndSlot,
		&entry.IsMain,
		&entry.IsBlocked,
		&parentID,
		&entry.SpansDuration,
		&entry.Notes,
		&entry.Completed,
		&payload,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&entry.Clock,
		&entry.SyncStatus,
	)
	if err != nil {
		return nil, err
	}

	entry.ParentID = parentID.String

	var act activity.Activity
	if err := json.Unmarshal([]byte(payload), &act); err != nil {
		return nil, fmt.Errorf("failed to decode activity payload: %w", err)
	}
	entry.Activity = act
	return &entry, nil
}
