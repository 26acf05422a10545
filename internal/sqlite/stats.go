package sqlite

import (
	"context"
	"fmt"
)

// StorageStats reports row counts per durable table.
type StorageStats struct {
	ScheduledActivities int64 `json:"scheduled_activities"`
	CachedActivities    int64 `json:"cached_activities"`
	APIResponses        int64 `json:"api_responses"`
	Preferences         int64 `json:"preferences"`
}

// Stats returns current storage usage.
func (db *DB) Stats(ctx context.Context) (StorageStats, error) {
	var stats StorageStats
	counts := []struct {
		table string
		dest  *int64
	}{
		{"scheduled_activities", &stats.ScheduledActivities},
		{"activity_cache", &stats.CachedActivities},
		{"api_cache", &stats.APIResponses},
		{"user_preferences", &stats.Preferences},
	}
	for _, c := range counts {
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest); err != nil {
			return StorageStats{}, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return stats, nil
}
