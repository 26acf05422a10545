package sync

import (
	"sort"

	"weekendly/internal/domain/plan"
)

// newer reports whether a should win over b under last-writer-wins. Equal
// wall-clock timestamps are broken by the per-device logical clock, so a tie
// never silently drops the later edit.
func newer(a, b plan.ScheduledActivity) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.Clock > b.Clock
}

// Merge unions two entry sets by scheduled id. On collision the newer copy
// wins. The result is ordered by creation time then id, so merging is
// deterministic and idempotent.
func Merge(local, durable []plan.ScheduledActivity) []plan.ScheduledActivity {
	byID := make(map[string]plan.ScheduledActivity, len(local)+len(durable))
	for _, entry := range local {
		byID[entry.ScheduledID] = entry
	}
	for _, entry := range durable {
		if existing, ok := byID[entry.ScheduledID]; ok && newer(existing, entry) {
			continue
		}
		byID[entry.ScheduledID] = entry
	}

	merged := make([]plan.ScheduledActivity, 0, len(byID))
	for _, entry := range byID {
		merged = append(merged, entry)
	}
	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.Before(merged[j].CreatedAt)
		}
		return merged[i].ScheduledID < merged[j].ScheduledID
	})
	return merged
}
