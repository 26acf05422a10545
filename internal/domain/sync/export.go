package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"weekendly/internal/domain/plan"
)

// SnapshotVersion is the current export format version.
const SnapshotVersion = "1"

// Snapshot is the JSON-serializable backup of all planning data.
type Snapshot struct {
	ScheduledActivities []plan.ScheduledActivity `json:"scheduled_activities"`
	UserPreferences     map[string]string        `json:"user_preferences"`
	ExportedAt          time.Time                `json:"exported_at"`
	Version             string                   `json:"version"`
}

// ExportAll snapshots the durable scheduled-activity set plus preferences.
func (c *Coordinator) ExportAll(ctx context.Context) (*Snapshot, error) {
	entries, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading store activities: %w", err)
	}
	prefs, err := c.prefs.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading preferences: %w", err)
	}
	return &Snapshot{
		ScheduledActivities: entries,
		UserPreferences:     prefs,
		ExportedAt:          time.Now(),
		Version:             SnapshotVersion,
	}, nil
}

// ImportAll restores a snapshot, clearing existing durable data first. The
// replace is transactional on the store side, so a failed import never leaves
// mixed old/new state. Unknown JSON fields are ignored; a payload that fails
// to parse or validate is rejected with a descriptive error.
func (c *Coordinator) ImportAll(ctx context.Context, data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, snap.Version)
	}
	for _, entry := range snap.ScheduledActivities {
		if entry.ScheduledID == "" {
			return fmt.Errorf("%w: entry missing scheduled id", ErrMalformedSnapshot)
		}
		if !entry.Day.Valid() {
			return fmt.Errorf("%w: entry %s has unknown day %q", ErrMalformedSnapshot, entry.ScheduledID, entry.Day)
		}
	}

	if err := c.store.ReplaceAll(ctx, snap.ScheduledActivities); err != nil {
		return fmt.Errorf("restoring scheduled activities: %w", err)
	}
	if snap.UserPreferences != nil {
		if err := c.prefs.ReplaceAll(ctx, snap.UserPreferences); err != nil {
			return fmt.Errorf("restoring preferences: %w", err)
		}
	}
	c.planner.Replace(snap.ScheduledActivities)
	return nil
}
