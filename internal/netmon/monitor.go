package netmon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

// Defaults for queue and timer behavior.
const (
	DefaultMaxAttempts   = 5
	DefaultBackoffBase   = 500 * time.Millisecond
	DefaultDrainInterval = 5 * time.Minute
	DefaultProbeInterval = 30 * time.Second
)

// Config configures a Monitor. Probe is optional; without it the monitor
// only changes state through SetOnline.
type Config struct {
	Probe         func(ctx context.Context) error
	MaxAttempts   uint64
	BackoffBase   time.Duration
	DrainInterval time.Duration
	ProbeInterval time.Duration
}

// DeadLetter is a queued operation that exhausted its retry budget.
type DeadLetter struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error"`
	FailedAt  time.Time `json:"failed_at"`
}

// op is one pending write operation with its own backoff schedule.
type op struct {
	id          string
	name        string
	run         func(ctx context.Context) error
	backoff     retry.Backoff
	attempts    int
	nextAttempt time.Time
}

// Monitor is the single source of truth for connectivity. It owns the
// pending-write queue: operations enqueued while offline are drained on
// reconnect, failed operations are retried with exponential backoff, and
// operations that exhaust their budget land on a dead-letter list.
type Monitor struct {
	mu       sync.Mutex
	online   bool
	subs     map[int]func(online bool)
	nextSub  int
	queue    []*op
	dead     []DeadLetter
	draining bool

	cfg    Config
	logger *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor creates a Monitor. The initial state is online; the first probe
// or SetOnline call corrects it.
func NewMonitor(cfg Config, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = DefaultBackoffBase
	}
	if cfg.DrainInterval == 0 {
		cfg.DrainInterval = DefaultDrainInterval
	}
	if cfg.ProbeInterval == 0 {
		cfg.ProbeInterval = DefaultProbeInterval
	}
	return &Monitor{
		online: true,
		subs:   make(map[int]func(bool)),
		cfg:    cfg,
		logger: logger,
	}
}

// Online reports current connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline flips connectivity state. Subscribers are notified on every
// transition; a transition to online triggers a queue drain.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	m.logger.Info("connectivity changed", "online", online)
	for _, fn := range subs {
		fn(online)
	}

	if online {
		go m.Drain(context.Background())
	}
}

// Subscribe registers a callback for connectivity transitions and returns an
// unsubscribe function.
func (m *Monitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Enqueue appends a pending write operation. When online, a drain attempt
// starts immediately.
func (m *Monitor) Enqueue(name string, run func(ctx context.Context) error) {
	m.mu.Lock()
	m.queue = append(m.queue, &op{
		id:      uuid.NewString(),
		name:    name,
		run:     run,
		backoff: retry.WithMaxRetries(m.cfg.MaxAttempts, retry.NewExponential(m.cfg.BackoffBase)),
	})
	online := m.online
	m.mu.Unlock()

	if online {
		go m.Drain(context.Background())
	}
}

// Drain executes the pending queue once. The queue is snapshotted and cleared
// before execution, so operations enqueued mid-drain join the next pass and a
// failing operation cannot loop within one pass. At most one drain runs at a
// time; concurrent calls are dropped.
func (m *Monitor) Drain(ctx context.Context) {
	m.mu.Lock()
	if m.draining || !m.online || len(m.queue) == 0 {
		m.mu.Unlock()
		return
	}
	m.draining = true
	pending := m.queue
	m.queue = nil
	m.mu.Unlock()

	now := time.Now()
	var requeue []*op
	for _, o := range pending {
		if now.Before(o.nextAttempt) {
			requeue = append(requeue, o)
			continue
		}

		o.attempts++
		err := o.run(ctx)
		if err == nil {
			continue
		}

		delay, stop := o.backoff.Next()
		if stop {
			m.logger.Error("queued operation dead-lettered",
				"name", o.name, "attempts", o.attempts, "error", err)
			m.mu.Lock()
			m.dead = append(m.dead, DeadLetter{
				ID:        o.id,
				Name:      o.name,
				Attempts:  o.attempts,
				LastError: err.Error(),
				FailedAt:  time.Now(),
			})
			m.mu.Unlock()
			continue
		}

		m.logger.Warn("queued operation failed, will retry",
			"name", o.name, "attempts", o.attempts, "delay", delay, "error", err)
		o.nextAttempt = time.Now().Add(delay)
		requeue = append(requeue, o)
	}

	m.mu.Lock()
	m.queue = append(m.queue, requeue...)
	m.draining = false
	m.mu.Unlock()
}

// Pending returns the number of queued operations.
func (m *Monitor) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// DeadLetters returns the operations that exhausted their retry budget.
func (m *Monitor) DeadLetters() []DeadLetter {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DeadLetter, len(m.dead))
	copy(out, m.dead)
	return out
}

// ErrorState reports whether any operation has been dead-lettered.
func (m *Monitor) ErrorState() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dead) > 0
}

// Start launches the periodic drain and probe loop.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		drain := time.NewTicker(m.cfg.DrainInterval)
		defer drain.Stop()

		var probeC <-chan time.Time
		if m.cfg.Probe != nil {
			probe := time.NewTicker(m.cfg.ProbeInterval)
			defer probe.Stop()
			probeC = probe.C
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-drain.C:
				if m.Online() {
					m.Drain(ctx)
				}
			case <-probeC:
				m.SetOnline(m.cfg.Probe(ctx) == nil)
			}
		}
	}()
}

// Stop shuts the background loop down and waits for it to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
