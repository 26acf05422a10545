package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"weekendly/internal/domain/activity"
	"weekendly/internal/domain/plan"
)

// Fetcher is a mock for activity.Fetcher.
type Fetcher struct {
	mock.Mock
}

func (m *Fetcher) FetchActivities(ctx context.Context, category activity.Category) ([]activity.Activity, error) {
	args := m.Called(ctx, category)
	if acts, ok := args.Get(0).([]activity.Activity); ok {
		return acts, args.Error(1)
	}
	return nil, args.Error(1)
}

// CacheStore is a mock for activity.CacheStore.
type CacheStore struct {
	mock.Mock
}

func (m *CacheStore) CacheActivities(ctx context.Context, acts []activity.Activity, category activity.Category, source activity.Source) error {
	args := m.Called(ctx, acts, category, source)
	return args.Error(0)
}

func (m *CacheStore) CachedActivities(ctx context.Context, category activity.Category) ([]activity.Activity, error) {
	args := m.Called(ctx, category)
	if acts, ok := args.Get(0).([]activity.Activity); ok {
		return acts, args.Error(1)
	}
	return nil, args.Error(1)
}

// DurableStore is a mock for sync.DurableStore.
type DurableStore struct {
	mock.Mock
}

func (m *DurableStore) List(ctx context.Context) ([]plan.ScheduledActivity, error) {
	args := m.Called(ctx)
	if entries, ok := args.Get(0).([]plan.ScheduledActivity); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DurableStore) ReplaceAll(ctx context.Context, entries []plan.ScheduledActivity) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *DurableStore) MarkAllSynced(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *DurableStore) LastModified(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Error(1)
}

// PreferenceStore is a mock for sync.PreferenceStore.
type PreferenceStore struct {
	mock.Mock
}

func (m *PreferenceStore) All(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if prefs, ok := args.Get(0).(map[string]string); ok {
		return prefs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *PreferenceStore) ReplaceAll(ctx context.Context, prefs map[string]string) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}

// Maintainer is a mock for sync.Maintainer.
type Maintainer struct {
	mock.Mock
}

func (m *Maintainer) PerformMaintenance(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Connectivity is a settable fake for activity.ConnectivityReporter.
type Connectivity struct {
	online bool
}

func NewConnectivity(online bool) *Connectivity {
	return &Connectivity{online: online}
}

func (c *Connectivity) Online() bool {
	return c.online
}

func (c *Connectivity) Set(online bool) {
	c.online = online
}
