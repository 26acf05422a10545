package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekendly/internal/domain/activity"
	"weekendly/internal/domain/plan"
	"weekendly/internal/repository"
)

func scheduledFixture(id string, day plan.Day, slot string) plan.ScheduledActivity {
	return plan.ScheduledActivity{
		Activity: activity.Activity{
			ID:       "act-" + id,
			Name:     "Brunch",
			Category: activity.CategoryFoodie,
			Duration: 60,
			Tags:     []string{"food", "morning"},
		},
		ScheduledID: id,
		WeekendKey:  "2026-09-05_2026-09-06",
		Day:         day,
		StartSlot:   slot,
		EndSlot:     slot,
		IsMain:      true,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		UpdatedAt:   time.Now().UTC().Truncate(time.Second),
		Clock:       1,
		SyncStatus:  plan.SyncStatusPending,
	}
}

// TestScheduledPutGet verifies round-tripping including the activity payload
func TestScheduledPutGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewScheduledRepository(db)
	ctx := context.Background()

	entry := scheduledFixture("s1", plan.DaySaturday, "10am")
	entry.Notes = "table for four"
	require.NoError(t, repo.Put(ctx, &entry))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, entry.ScheduledID, got.ScheduledID)
	assert.Equal(t, entry.WeekendKey, got.WeekendKey)
	assert.Equal(t, entry.Day, got.Day)
	assert.Equal(t, entry.Notes, got.Notes)
	assert.Equal(t, entry.Activity.Name, got.Activity.Name)
	assert.Equal(t, entry.Activity.Tags, got.Activity.Tags)
	assert.Equal(t, plan.SyncStatusPending, got.SyncStatus)
}

// TestScheduledPutDefaults verifies timestamp and status stamping
func TestScheduledPutDefaults(t *testing.T) {
	db := NewTestDB(t)
	repo := NewScheduledRepository(db)
	ctx := context.Background()

	entry := plan.ScheduledActivity{
		Activity:    activity.Activity{ID: "act-1", Name: "Run", Duration: 60},
		ScheduledID: "s1",
		Day:         plan.DaySunday,
		StartSlot:   "7am",
		EndSlot:     "7am",
		IsMain:      true,
	}
	require.NoError(t, repo.Put(ctx, &entry))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())
	assert.Equal(t, plan.SyncStatusPending, got.SyncStatus)
}

// TestScheduledPutUpsert verifies an existing row is updated, not duplicated
func TestScheduledPutUpsert(t *testing.T) {
	db := NewTestDB(t)
	repo := NewScheduledRepository(db)
	ctx := context.Background()

	entry := scheduledFixture("s1", plan.DaySaturday, "10am")
	require.NoError(t, repo.Put(ctx, &entry))

	entry.StartSlot = "2pm"
	entry.EndSlot = "2pm"
	entry.Completed = true
	require.NoError(t, repo.Put(ctx, &entry))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2pm", entries[0].StartSlot)
	assert.True(t, entries[0].Completed)
}

// TestScheduledGetNotFound verifies the sentinel for missing ids
func TestScheduledGetNotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewScheduledRepository(db)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestScheduledRemoveGroup verifies blocked continuations go with their parent
func TestScheduledRemoveGroup(t *testing.T) {
	db := NewTestDB(t)
	repo := NewScheduledRepository(db)
	ctx := context.Background()

	main := scheduledFixture("s1", plan.DaySaturday, "9am")
	main.EndSlot = "11am"
	main.SpansDuration = true
	require.NoError(t, repo.Put(ctx, &main))

	for _, slot := range []string{"10am", "11am"} {
		blocked := scheduledFixture("s1-"+slot, plan.DaySaturday, slot)
		blocked.IsMain = false
		blocked.IsBlocked = true
		blocked.ParentID = "s1"
		require.NoError(t, repo.Put(ctx, &blocked))
	}

	require.NoError(t, repo.Remove(ctx, "s1"))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// TestScheduledRemoveNotFound verifies the sentinel when nothing matches
func TestScheduledRemoveNotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewScheduledRepository(db)

	err := repo.Remove(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestScheduledListForDay verifies day filtering and creation-time ordering
func TestScheduledListForDay(t *testing.T) {
	db := NewTestDB(t)
	repo := NewScheduledRepository(db)
	ctx := context.Background()

	first := scheduledFixture("s1", plan.DaySaturday, "9am")
	second := scheduledFixture("s2", plan.DaySaturday, "2pm")
	second.CreatedAt = first.CreatedAt.Add(time.Minute)
	other := scheduledFixture("s3", plan.DaySunday, "9am")
	for _, entry := range []*plan.ScheduledActivity{&second, &first, &other} {
		require.NoError(t, repo.Put(ctx, entry))
	}

	saturday, err := repo.ListForDay(ctx, plan.DaySaturday)
	require.NoError(t, err)
	require.Len(t, saturday, 2)
	assert.Equal(t, "s1", saturday[0].ScheduledID)
	assert.Equal(t, "s2", saturday[1].ScheduledID)

	sunday, err := repo.ListForDay(ctx, plan.DaySunday)
	require.NoError(t, err)
	require.Len(t, sunday, 1)
	assert.Equal(t, "s3", sunday[0].ScheduledID)
}

// TestScheduledReplaceAll verifies the transactional full swap
func TestScheduledReplaceAll(t *testing.T) {
	db := NewTestDB(t)
	repo := NewScheduledRepository(db)
	ctx := context.Background()

	old := scheduledFixture("old", plan.DaySaturday, "9am")
	require.NoError(t, repo.Put(ctx, &old))

	replacement := []plan.ScheduledActivity{
		scheduledFixture("new-1", plan.DaySaturday, "10am"),
		scheduledFixture("new-2", plan.DaySunday, "2pm"),
	}
	require.NoError(t, repo.ReplaceAll(ctx, replacement))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	_, err = repo.Get(ctx, "old")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestScheduledMarkAllSynced verifies only pending rows flip
func TestScheduledMarkAllSynced(t *testing.T) {
	db := NewTestDB(t)
	repo := NewScheduledRepository(db)
	ctx := context.Background()

	pending := scheduledFixture("s1", plan.DaySaturday, "9am")
	failed := scheduledFixture("s2", plan.DaySaturday, "2pm")
	failed.SyncStatus = plan.SyncStatusError
	require.NoError(t, repo.Put(ctx, &pending))
	require.NoError(t, repo.Put(ctx, &failed))

	require.NoError(t, repo.MarkAllSynced(ctx))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, plan.SyncStatusSynced, got.SyncStatus)

	got, err = repo.Get(ctx, "s2")
	require.NoError(t, err)
	assert.Equal(t, plan.SyncStatusError, got.SyncStatus)
}

// TestScheduledLastModified verifies the max-updated-at lookup
func TestScheduledLastModified(t *testing.T) {
	db := NewTestDB(t)
	repo := NewScheduledRepository(db)
	ctx := context.Background()

	ts, err := repo.LastModified(ctx)
	require.NoError(t, err)
	assert.True(t, ts.IsZero(), "empty table should report the zero time")

	older := scheduledFixture("s1", plan.DaySaturday, "9am")
	newer := scheduledFixture("s2", plan.DaySunday, "2pm")
	newer.UpdatedAt = older.UpdatedAt.Add(time.Hour)
	require.NoError(t, repo.Put(ctx, &older))
	require.NoError(t, repo.Put(ctx, &newer))

	ts, err = repo.LastModified(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, newer.UpdatedAt, ts, time.Second)
}
