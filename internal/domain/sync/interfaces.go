package sync

import (
	"context"
	"time"

	"weekendly/internal/domain/plan"
)

// PlannerStore is the ephemeral side of a sync pass.
type PlannerStore interface {
	Snapshot() []plan.ScheduledActivity
	Replace(entries []plan.ScheduledActivity)
	LastModified() time.Time
}

// DurableStore is the durable side of a sync pass.
type DurableStore interface {
	List(ctx context.Context) ([]plan.ScheduledActivity, error)
	ReplaceAll(ctx context.Context, entries []plan.ScheduledActivity) error
	MarkAllSynced(ctx context.Context) error
	LastModified(ctx context.Context) (time.Time, error)
}

// PreferenceStore provides the preference half of export/import snapshots.
type PreferenceStore interface {
	All(ctx context.Context) (map[string]string, error)
	ReplaceAll(ctx context.Context, prefs map[string]string) error
}

// Maintainer prunes expired cache rows.
type Maintainer interface {
	PerformMaintenance(ctx context.Context) (int64, error)
}

// ConnectivitySource delivers reconnect events.
type ConnectivitySource interface {
	Subscribe(fn func(online bool)) func()
}
