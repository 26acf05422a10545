package sync

import (
	"context"
	"fmt"
	"log/slog"
	gosync "sync"
	"sync/atomic"
	"time"

	"weekendly/internal/domain/plan"
)

// Defaults for the coordinator's timers.
const (
	DefaultInterval            = 5 * time.Minute
	DefaultMaintenanceInterval = time.Hour
	DefaultReconnectDelay      = time.Second
)

// Config configures a Coordinator.
type Config struct {
	Interval            time.Duration
	MaintenanceInterval time.Duration
	ReconnectDelay      time.Duration
}

// Coordinator reconciles the ephemeral planning store with durable storage.
// At most one pass runs at a time; a pass requested mid-pass is dropped.
type Coordinator struct {
	planner PlannerStore
	store   DurableStore
	prefs   PreferenceStore
	maint   Maintainer
	cfg     Config
	logger  *slog.Logger

	syncInProgress atomic.Bool

	mu             gosync.Mutex
	lastSync       time.Time
	reconnectTimer *time.Timer

	cancel      context.CancelFunc
	done        chan struct{}
	unsubscribe func()
}

// NewCoordinator creates a sync coordinator.
func NewCoordinator(planner PlannerStore, store DurableStore, prefs PreferenceStore, maint Maintainer, cfg Config, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaintenanceInterval == 0 {
		cfg.MaintenanceInterval = DefaultMaintenanceInterval
	}
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	return &Coordinator{
		planner: planner,
		store:   store,
		prefs:   prefs,
		maint:   maint,
		cfg:     cfg,
		logger:  logger,
	}
}

// Sync runs one compare-and-merge pass. The strictly newer side overwrites
// the other; equal timestamps (including both sides empty) merge by id with
// per-record last-writer-wins. lastSync advances only on success.
func (c *Coordinator) Sync(ctx context.Context) error {
	if !c.syncInProgress.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer c.syncInProgress.Store(false)

	planTS := c.planner.LastModified()
	storeTS, err := c.store.LastModified(ctx)
	if err != nil {
		return fmt.Errorf("reading store timestamp: %w", err)
	}

	var result []plan.ScheduledActivity
	switch {
	case planTS.After(storeTS):
		result = c.planner.Snapshot()
	case storeTS.After(planTS):
		result, err = c.store.List(ctx)
		if err != nil {
			return fmt.Errorf("reading store activities: %w", err)
		}
	default:
		durable, err := c.store.List(ctx)
		if err != nil {
			return fmt.Errorf("reading store activities: %w", err)
		}
		result = Merge(c.planner.Snapshot(), durable)
	}

	if err := c.writeBoth(ctx, result); err != nil {
		return err
	}

	c.mu.Lock()
	c.lastSync = time.Now()
	c.mu.Unlock()
	c.logger.Debug("sync pass complete", "activities", len(result))
	return nil
}

// writeBoth writes the result set to both sides, then flips the pending rows
// to synced now that the pass has landed them.
func (c *Coordinator) writeBoth(ctx context.Context, result []plan.ScheduledActivity) error {
	if err := c.store.ReplaceAll(ctx, result); err != nil {
		return fmt.Errorf("writing store activities: %w", err)
	}
	if err := c.store.MarkAllSynced(ctx); err != nil {
		return fmt.Errorf("marking store synced: %w", err)
	}
	for i := range result {
		result[i].SyncStatus = plan.SyncStatusSynced
	}
	c.planner.Replace(result)
	return nil
}

// InitialSync seeds the durable store from the planner's snapshot when the
// store is empty, then runs a regular pass.
func (c *Coordinator) InitialSync(ctx context.Context) error {
	durable, err := c.store.List(ctx)
	if err != nil {
		return fmt.Errorf("reading store activities: %w", err)
	}
	if len(durable) == 0 {
		if snapshot := c.planner.Snapshot(); len(snapshot) > 0 {
			if err := c.store.ReplaceAll(ctx, snapshot); err != nil {
				return fmt.Errorf("seeding store: %w", err)
			}
		}
	}
	return c.Sync(ctx)
}

// ForceSync bypasses the compare step and writes the given set to both sides
// unconditionally. Used when the UI commits a user-initiated batch change.
func (c *Coordinator) ForceSync(ctx context.Context, entries []plan.ScheduledActivity) error {
	if !c.syncInProgress.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer c.syncInProgress.Store(false)

	if err := c.writeBoth(ctx, entries); err != nil {
		return err
	}

	c.mu.Lock()
	c.lastSync = time.Now()
	c.mu.Unlock()
	return nil
}

// LastSyncTime returns when the last successful pass completed.
func (c *Coordinator) LastSyncTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSync
}

// Start launches the periodic sync and maintenance loop and subscribes to
// reconnect events. A reconnect schedules a debounced pass so the connection
// has a moment to stabilize.
func (c *Coordinator) Start(ctx context.Context, connectivity ConnectivitySource) {
	c.mu.Lock()
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	c.mu.Unlock()

	if connectivity != nil {
		c.unsubscribe = connectivity.Subscribe(func(online bool) {
			if !online {
				return
			}
			c.mu.Lock()
			if c.reconnectTimer != nil {
				c.reconnectTimer.Stop()
			}
			c.reconnectTimer = time.AfterFunc(c.cfg.ReconnectDelay, func() {
				if err := c.Sync(context.Background()); err != nil && err != ErrSyncInProgress {
					c.logger.Error("reconnect sync failed", "error", err)
				}
			})
			c.mu.Unlock()
		})
	}

	go func() {
		defer close(c.done)
		syncTicker := time.NewTicker(c.cfg.Interval)
		defer syncTicker.Stop()
		maintTicker := time.NewTicker(c.cfg.MaintenanceInterval)
		defer maintTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-syncTicker.C:
				c.mu.Lock()
				due := time.Since(c.lastSync) >= c.cfg.Interval
				c.mu.Unlock()
				if !due {
					continue
				}
				if err := c.Sync(ctx); err != nil && err != ErrSyncInProgress {
					c.logger.Error("periodic sync failed", "error", err)
				}
			case <-maintTicker.C:
				if c.maint == nil {
					continue
				}
				removed, err := c.maint.PerformMaintenance(ctx)
				if err != nil {
					c.logger.Error("cache maintenance failed", "error", err)
					continue
				}
				if removed > 0 {
					c.logger.Info("cache maintenance pruned rows", "removed", removed)
				}
			}
		}
	}()
}

// Stop shuts the background loop down and waits for it to exit.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
	}
	c.mu.Unlock()

	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
