package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weekendly/internal/repository"
)

// TestPreferencesSetGet verifies basic storage and the upsert path
func TestPreferencesSetGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewPreferenceRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "theme", "dark"))

	value, err := repo.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", value)

	require.NoError(t, repo.Set(ctx, "theme", "light"))
	value, err = repo.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "light", value)
}

// TestPreferencesGetNotFound verifies the sentinel for missing keys
func TestPreferencesGetNotFound(t *testing.T) {
	db := NewTestDB(t)
	repo := NewPreferenceRepository(db)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestPreferencesAll verifies the full map read
func TestPreferencesAll(t *testing.T) {
	db := NewTestDB(t)
	repo := NewPreferenceRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "theme", "dark"))
	require.NoError(t, repo.Set(ctx, "units", "metric"))

	prefs, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"theme": "dark", "units": "metric"}, prefs)
}

// TestPreferencesReplaceAll verifies the transactional swap
func TestPreferencesReplaceAll(t *testing.T) {
	db := NewTestDB(t)
	repo := NewPreferenceRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "stale", "value"))
	require.NoError(t, repo.ReplaceAll(ctx, map[string]string{"theme": "dark"}))

	prefs, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"theme": "dark"}, prefs)
}
