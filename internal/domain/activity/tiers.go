package activity

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// FreshnessWindow is how long an in-memory category cache is served without
// re-fetching.
const FreshnessWindow = 30 * time.Minute

var errStaleMemory = errors.New("memory cache stale or empty")

// memoryCache holds per-category activity sets with a freshness timestamp.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[Category]memoryEntry
	window  time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	activities []Activity
	fetchedAt  time.Time
}

func newMemoryCache(window time.Duration, now func() time.Time) *memoryCache {
	if now == nil {
		now = time.Now
	}
	return &memoryCache{
		entries: make(map[Category]memoryEntry),
		window:  window,
		now:     now,
	}
}

// get returns the cached set for a category and whether it is still fresh.
func (m *memoryCache) get(category Category) ([]Activity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[category]
	if !ok {
		return nil, false
	}
	fresh := m.now().Sub(entry.fetchedAt) < m.window
	return entry.activities, fresh
}

func (m *memoryCache) put(category Category, acts []Activity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[category] = memoryEntry{activities: acts, fetchedAt: m.now()}
}

// tier is one named source in the retrieval fallback chain. A tier either
// produces the category's activities or returns an error to signal fall-through.
type tier interface {
	name() string
	fetch(ctx context.Context, category Category) ([]Activity, error)
}

// memoryTier serves the in-memory cache while it is inside the freshness window.
type memoryTier struct {
	mem *memoryCache
}

func (t *memoryTier) name() string { return "memory" }

func (t *memoryTier) fetch(_ context.Context, category Category) ([]Activity, error) {
	acts, fresh := t.mem.get(category)
	if !fresh {
		return nil, errStaleMemory
	}
	return acts, nil
}

// networkTier fetches from the catalog API when the monitor reports
// connectivity, then mirrors results into memory and the durable cache.
type networkTier struct {
	fetcher Fetcher
	net     ConnectivityReporter
	store   CacheStore
	mem     *memoryCache
	logger  *slog.Logger
}

func (t *networkTier) name() string { return "network" }

func (t *networkTier) fetch(ctx context.Context, category Category) ([]Activity, error) {
	if t.net != nil && !t.net.Online() {
		return nil, ErrOffline
	}

	acts, err := t.fetcher.FetchActivities(ctx, category)
	if err != nil {
		return nil, err
	}

	t.mem.put(category, acts)
	if t.store != nil {
		if err := t.store.CacheActivities(ctx, acts, category, SourceAPI); err != nil {
			t.logger.Warn("failed to mirror activities into durable cache",
				"category", category, "error", err)
		}
	}
	return acts, nil
}

// cacheTier serves non-expired entries from the durable cache.
type cacheTier struct {
	store  CacheStore
	mem    *memoryCache
	logger *slog.Logger
}

func (t *cacheTier) name() string { return "cache" }

func (t *cacheTier) fetch(ctx context.Context, category Category) ([]Activity, error) {
	acts, err := t.store.CachedActivities(ctx, category)
	if err != nil {
		// Store failures degrade to the next tier, never upward.
		t.logger.Warn("durable cache read failed", "category", category, "error", err)
		return nil, ErrNoCachedData
	}
	if len(acts) == 0 {
		return nil, ErrNoCachedData
	}
	t.mem.put(category, acts)
	return acts, nil
}

// staticTier serves the bundled dataset. It never fails.
type staticTier struct {
	catalog *StaticCatalog
}

func (t *staticTier) name() string { return "static" }

func (t *staticTier) fetch(_ context.Context, category Category) ([]Activity, error) {
	return t.catalog.ForCategory(category), nil
}
