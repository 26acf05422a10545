package plan

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekendly/internal/domain/activity"
)

func testActivity(name string, duration int) activity.Activity {
	return activity.Activity{
		ID:       "act-" + name,
		Name:     name,
		Category: activity.CategoryAdventurous,
		Duration: duration,
	}
}

func newTestPlanner(t *testing.T) *Planner {
	t.Helper()
	return NewPlanner(slog.New(slog.NewTextHandler(testWriter{t}, nil)))
}

type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestPlannerAdd(t *testing.T) {
	p := newTestPlanner(t)

	ok := p.Add(testActivity("Brunch", 60), "10am", DaySaturday)
	require.True(t, ok)

	entries := p.ActivitiesForSlot(DaySaturday, "10am")
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsMain)
	assert.False(t, entries[0].IsBlocked)
	assert.False(t, entries[0].SpansDuration)
	assert.Equal(t, "11am", entries[0].EndSlot)
	assert.Equal(t, SyncStatusPending, entries[0].SyncStatus)
	assert.NotEmpty(t, entries[0].ScheduledID)
	assert.Equal(t, p.CurrentWeekendKey(), entries[0].WeekendKey)
}

func TestPlannerAddMultiHourGroup(t *testing.T) {
	p := newTestPlanner(t)

	// 150 minutes rounds up to three hourly slots.
	ok := p.Add(testActivity("Hiking", 150), "9am", DaySaturday)
	require.True(t, ok)

	day := p.ActivitiesForDay(DaySaturday)
	require.Len(t, day, 3)

	var main ScheduledActivity
	blocked := make(map[string]ScheduledActivity)
	for _, entry := range day {
		if entry.IsMain {
			main = entry
		} else {
			blocked[entry.StartSlot] = entry
		}
	}

	require.NotEmpty(t, main.ScheduledID)
	assert.Equal(t, "9am", main.StartSlot)
	assert.Equal(t, "12pm", main.EndSlot)
	assert.True(t, main.SpansDuration)

	require.Len(t, blocked, 2)
	for _, slot := range []string{"10am", "11am"} {
		entry, found := blocked[slot]
		require.True(t, found, "expected blocked entry at %s", slot)
		assert.True(t, entry.IsBlocked)
		assert.False(t, entry.IsMain)
		assert.Equal(t, main.ScheduledID, entry.ParentID)
	}

	// The continuation slots count as occupied for new placements.
	assert.False(t, p.Add(testActivity("Coffee", 60), "10am", DaySaturday))
	assert.True(t, p.IsSlotOccupied(DaySaturday, "10am"))
	assert.True(t, p.IsSlotOccupied(DaySaturday, "11am"))
	assert.False(t, p.IsSlotOccupied(DaySaturday, "12pm"))
}

func TestPlannerAddConflict(t *testing.T) {
	p := newTestPlanner(t)

	require.True(t, p.Add(testActivity("Yoga", 60), "8am", DaySunday))
	assert.False(t, p.Add(testActivity("Run", 60), "8am", DaySunday))

	// Same slot on a different day is free.
	assert.True(t, p.Add(testActivity("Run", 60), "8am", DaySaturday))

	// A conflicting multi-hour add must not leave partial entries behind.
	assert.False(t, p.Add(testActivity("Workshop", 180), "7am", DaySunday))
	assert.Empty(t, p.ActivitiesForSlot(DaySunday, "7am"))
}

func TestPlannerAddRejectsInvalidInput(t *testing.T) {
	p := newTestPlanner(t)

	assert.False(t, p.Add(testActivity("Bad", 60), "25pm", DaySaturday))
	assert.False(t, p.Add(testActivity("Bad", 60), "10am", Day("someday")))
	assert.False(t, p.Add(testActivity("Bad", 0), "10am", DaySaturday))
	assert.Empty(t, p.CurrentWeekendActivities())
}

func TestPlannerRemoveGroup(t *testing.T) {
	p := newTestPlanner(t)

	require.True(t, p.Add(testActivity("Hiking", 150), "9am", DaySaturday))
	day := p.ActivitiesForDay(DaySaturday)
	require.Len(t, day, 3)

	// Removing by a blocked member's id takes the whole group with it.
	var blockedID string
	for _, entry := range day {
		if entry.IsBlocked {
			blockedID = entry.ScheduledID
			break
		}
	}
	require.NotEmpty(t, blockedID)

	p.Remove(blockedID)
	assert.Empty(t, p.ActivitiesForDay(DaySaturday))
	assert.False(t, p.IsSlotOccupied(DaySaturday, "9am"))
}

func TestPlannerRemoveUnknownID(t *testing.T) {
	p := newTestPlanner(t)
	require.True(t, p.Add(testActivity("Brunch", 60), "10am", DaySaturday))

	p.Remove("no-such-id")
	assert.Len(t, p.ActivitiesForDay(DaySaturday), 1)
}

func TestPlannerMove(t *testing.T) {
	p := newTestPlanner(t)

	require.True(t, p.Add(testActivity("Hiking", 150), "9am", DaySaturday))
	var main ScheduledActivity
	for _, entry := range p.ActivitiesForDay(DaySaturday) {
		if entry.IsMain {
			main = entry
		}
	}
	origID := main.ScheduledID

	require.True(t, p.Move(origID, "2pm", DaySunday))

	assert.Empty(t, p.ActivitiesForDay(DaySaturday))
	moved := p.ActivitiesForDay(DaySunday)
	require.Len(t, moved, 3)

	var newMain ScheduledActivity
	var blockedSlots []string
	for _, entry := range moved {
		if entry.IsMain {
			newMain = entry
		} else {
			blockedSlots = append(blockedSlots, entry.StartSlot)
			assert.Equal(t, origID, entry.ParentID)
		}
	}

	// The group keeps the main entry's identity across the move.
	assert.Equal(t, origID, newMain.ScheduledID)
	assert.Equal(t, "2pm", newMain.StartSlot)
	assert.Equal(t, "5pm", newMain.EndSlot)
	assert.ElementsMatch(t, []string{"3pm", "4pm"}, blockedSlots)
}

func TestPlannerMoveConflictRestoresGroup(t *testing.T) {
	p := newTestPlanner(t)

	require.True(t, p.Add(testActivity("Hiking", 150), "9am", DaySaturday))
	require.True(t, p.Add(testActivity("Brunch", 60), "1pm", DaySaturday))

	var hikingID string
	for _, entry := range p.ActivitiesForSlot(DaySaturday, "9am") {
		hikingID = entry.ScheduledID
	}
	require.NotEmpty(t, hikingID)

	// Destination overlaps Brunch at 1pm; nothing may change.
	require.False(t, p.Move(hikingID, "12pm", DaySaturday))

	assert.True(t, p.IsSlotOccupied(DaySaturday, "9am"))
	assert.True(t, p.IsSlotOccupied(DaySaturday, "10am"))
	assert.True(t, p.IsSlotOccupied(DaySaturday, "11am"))
	assert.Len(t, p.ActivitiesForDay(DaySaturday), 4)
}

func TestPlannerMoveToOwnSlots(t *testing.T) {
	p := newTestPlanner(t)

	require.True(t, p.Add(testActivity("Hiking", 150), "9am", DaySaturday))
	var hikingID string
	for _, entry := range p.ActivitiesForSlot(DaySaturday, "9am") {
		hikingID = entry.ScheduledID
	}

	// Shifting one hour later overlaps the group's own former slots, which
	// must not count as a conflict.
	require.True(t, p.Move(hikingID, "10am", DaySaturday))

	assert.False(t, p.IsSlotOccupied(DaySaturday, "9am"))
	assert.True(t, p.IsSlotOccupied(DaySaturday, "10am"))
	assert.True(t, p.IsSlotOccupied(DaySaturday, "12pm"))
}

func TestPlannerWeekendPartitions(t *testing.T) {
	p := newTestPlanner(t)

	require.True(t, p.Add(testActivity("Brunch", 60), "10am", DaySaturday))
	firstKey := p.CurrentWeekendKey()

	next := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	p.SetCurrentWeekend(next, next.AddDate(0, 0, 1))
	require.NotEqual(t, firstKey, p.CurrentWeekendKey())

	// The new partition starts empty and its slots are free.
	assert.Empty(t, p.CurrentWeekendActivities())
	assert.False(t, p.IsSlotOccupied(DaySaturday, "10am"))
	require.True(t, p.Add(testActivity("Museum", 120), "10am", DaySaturday))

	// Clearing only touches the active partition.
	p.ClearAll()
	assert.Empty(t, p.CurrentWeekendActivities())

	p.SetCurrentWeekend(
		mustParseDate(t, firstKey[:10]),
		mustParseDate(t, firstKey[11:]),
	)
	assert.Len(t, p.CurrentWeekendActivities(), 1)
}

func mustParseDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return parsed
}

func TestPlannerSnapshotAndReplace(t *testing.T) {
	p := newTestPlanner(t)

	require.True(t, p.Add(testActivity("Brunch", 60), "10am", DaySaturday))
	next := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	p.SetCurrentWeekend(next, next.AddDate(0, 0, 1))
	require.True(t, p.Add(testActivity("Museum", 60), "2pm", DaySunday))

	snap := p.Snapshot()
	require.Len(t, snap, 2)

	other := newTestPlanner(t)
	other.Replace(snap)
	restored := other.Snapshot()
	assert.ElementsMatch(t, snap, restored)

	// Replace partitions entries back by weekend key.
	other.SetCurrentWeekend(next, next.AddDate(0, 0, 1))
	require.Len(t, other.CurrentWeekendActivities(), 1)
	assert.Equal(t, "Museum", other.CurrentWeekendActivities()[0].Name)
}

func TestPlannerReplaceAdvancesClock(t *testing.T) {
	p := newTestPlanner(t)

	p.Replace([]ScheduledActivity{{
		Activity:    testActivity("Brunch", 60),
		ScheduledID: "remote-1",
		Day:         DaySaturday,
		StartSlot:   "10am",
		EndSlot:     "10am",
		IsMain:      true,
		Clock:       40,
	}})

	require.True(t, p.Add(testActivity("Run", 60), "7am", DaySunday))
	for _, entry := range p.ActivitiesForDay(DaySunday) {
		assert.Greater(t, entry.Clock, int64(40))
	}
}

func TestPlannerLastModified(t *testing.T) {
	p := newTestPlanner(t)
	assert.True(t, p.LastModified().IsZero())

	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	ts := base
	p.now = func() time.Time {
		ts = ts.Add(time.Minute)
		return ts
	}

	require.True(t, p.Add(testActivity("Brunch", 60), "10am", DaySaturday))
	require.True(t, p.Add(testActivity("Run", 60), "7am", DaySunday))
	assert.Equal(t, ts, p.LastModified())
}
