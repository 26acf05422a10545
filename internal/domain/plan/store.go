package plan

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"weekendly/internal/domain/activity"
)

// Planner is the ephemeral planning store: the working schedule for the
// currently selected weekend, partitioned by weekend key. All operations are
// synchronous and in-memory; occupancy conflicts are reported as booleans,
// never as errors.
type Planner struct {
	mu       sync.RWMutex
	weekends map[string][]ScheduledActivity
	current  string
	clock    int64
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
}

// NewPlanner creates a planning store with the upcoming Saturday/Sunday as
// the active weekend.
func NewPlanner(logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Planner{
		weekends: make(map[string][]ScheduledActivity),
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logger,
	}
	first, last := upcomingWeekend(p.now())
	p.current = WeekendKey(first, last)
	return p
}

func upcomingWeekend(now time.Time) (time.Time, time.Time) {
	daysUntilSat := (int(time.Saturday) - int(now.Weekday()) + 7) % 7
	sat := now.AddDate(0, 0, daysUntilSat)
	return sat, sat.AddDate(0, 0, 1)
}

// SetCurrentWeekend switches the active partition. Data in other partitions
// is retained untouched and becomes visible again when switching back.
func (p *Planner) SetCurrentWeekend(first, last time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = WeekendKey(first, last)
}

// CurrentWeekendKey returns the active partition identifier.
func (p *Planner) CurrentWeekendKey() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Add schedules an activity at startSlot on day. It fails without mutating
// anything if any slot in the activity's range is already occupied, the day
// or slot is unknown, or the duration is non-positive.
func (p *Planner) Add(act activity.Activity, startSlot string, day Day) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addLocked(act, startSlot, day) != ""
}

// addLocked performs the occupancy check and group creation, returning the
// new main entry's scheduled id, or "" on conflict.
func (p *Planner) addLocked(act activity.Activity, startSlot string, day Day) string {
	startIdx := SlotIndex(startSlot)
	span := SlotsSpanned(act.Duration)
	if !day.Valid() || startIdx < 0 || span == 0 {
		return ""
	}

	for i := startIdx; i < startIdx+span && i < len(TimeSlots); i++ {
		if p.occupiedLocked(day, i) {
			return ""
		}
	}

	now := p.now()
	p.clock++
	main := ScheduledActivity{
		Activity:      act,
		ScheduledID:   p.newID(),
		WeekendKey:    p.current,
		Day:           day,
		StartSlot:     startSlot,
		EndSlot:       endLabel(startIdx, span),
		IsMain:        true,
		SpansDuration: span > 1,
		CreatedAt:     now,
		UpdatedAt:     now,
		Clock:         p.clock,
		SyncStatus:    SyncStatusPending,
	}

	entries := []ScheduledActivity{main}
	for i := startIdx + 1; i < startIdx+span && i < len(TimeSlots); i++ {
		blocked := ScheduledActivity{
			Activity:    act,
			ScheduledID: p.newID(),
			WeekendKey:  p.current,
			Day:         day,
			StartSlot:   TimeSlots[i],
			EndSlot:     endLabel(i, 1),
			IsBlocked:   true,
			ParentID:    main.ScheduledID,
			CreatedAt:   now,
			UpdatedAt:   now,
			Clock:       p.clock,
			SyncStatus:  SyncStatusPending,
		}
		entries = append(entries, blocked)
	}

	p.weekends[p.current] = append(p.weekends[p.current], entries...)
	return main.ScheduledID
}

// Remove deletes the whole group the given entry belongs to. The id may
// address either the main entry or any of its blocked continuations.
func (p *Planner) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeGroupLocked(p.resolveGroupLocked(id))
}

// resolveGroupLocked maps an entry id to its group's main id, or "".
func (p *Planner) resolveGroupLocked(id string) string {
	for _, entry := range p.weekends[p.current] {
		if entry.ScheduledID == id {
			return entry.GroupID()
		}
	}
	return ""
}

func (p *Planner) removeGroupLocked(mainID string) []ScheduledActivity {
	if mainID == "" {
		return nil
	}
	var kept, removed []ScheduledActivity
	for _, entry := range p.weekends[p.current] {
		if entry.GroupID() == mainID {
			removed = append(removed, entry)
			continue
		}
		kept = append(kept, entry)
	}
	p.weekends[p.current] = kept
	return removed
}

// Move relocates an activity group to a new slot and day, re-deriving its
// blocked continuation entries at the destination. It fails, leaving the
// group exactly where it was, if any destination slot is occupied by a
// different group.
func (p *Planner) Move(id string, newSlot string, newDay Day) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	mainID := p.resolveGroupLocked(id)
	if mainID == "" {
		return false
	}

	removed := p.removeGroupLocked(mainID)
	var main *ScheduledActivity
	for i := range removed {
		if removed[i].IsMain {
			main = &removed[i]
			break
		}
	}
	if main == nil {
		// Orphaned blocked entries; drop them rather than restore.
		return false
	}

	newMainID := p.addLocked(main.Activity, newSlot, newDay)
	if newMainID == "" {
		p.weekends[p.current] = append(p.weekends[p.current], removed...)
		return false
	}

	// Carry the main entry's identity and user edits to the new location.
	entries := p.weekends[p.current]
	for i := range entries {
		switch {
		case entries[i].ScheduledID == newMainID:
			entries[i].ScheduledID = main.ScheduledID
			entries[i].Notes = main.Notes
			entries[i].Completed = main.Completed
			entries[i].CreatedAt = main.CreatedAt
		case entries[i].ParentID == newMainID:
			entries[i].ParentID = main.ScheduledID
		}
	}
	return true
}

// IsSlotOccupied reports whether any group occupies the slot on the given day
// in the active weekend.
func (p *Planner) IsSlotOccupied(day Day, slot string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	idx := SlotIndex(slot)
	if idx < 0 {
		return false
	}
	return p.occupiedLocked(day, idx)
}

func (p *Planner) occupiedLocked(day Day, idx int) bool {
	for _, entry := range p.weekends[p.current] {
		if entry.Day == day && SlotIndex(entry.StartSlot) == idx {
			return true
		}
	}
	return false
}

// ActivitiesForSlot returns the entries occupying a slot on a day.
func (p *Planner) ActivitiesForSlot(day Day, slot string) []ScheduledActivity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []ScheduledActivity
	for _, entry := range p.weekends[p.current] {
		if entry.Day == day && entry.StartSlot == slot {
			out = append(out, entry)
		}
	}
	return out
}

// ActivitiesForDay returns all entries for a day in the active weekend.
func (p *Planner) ActivitiesForDay(day Day) []ScheduledActivity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []ScheduledActivity
	for _, entry := range p.weekends[p.current] {
		if entry.Day == day {
			out = append(out, entry)
		}
	}
	return out
}

// CurrentWeekendActivities returns a copy of the active partition.
func (p *Planner) CurrentWeekendActivities() []ScheduledActivity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]ScheduledActivity, len(p.weekends[p.current]))
	copy(out, p.weekends[p.current])
	return out
}

// ClearAll empties only the active weekend partition.
func (p *Planner) ClearAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.weekends, p.current)
}

// Snapshot returns every entry across all weekend partitions, for the sync
// coordinator.
func (p *Planner) Snapshot() []ScheduledActivity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []ScheduledActivity
	for _, entries := range p.weekends {
		out = append(out, entries...)
	}
	return out
}

// Replace rebuilds all partitions from a merged entry set. Entries without a
// weekend key land in the active partition. The logical clock advances past
// the highest clock seen so subsequent local edits win ties.
func (p *Planner) Replace(entries []ScheduledActivity) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.weekends = make(map[string][]ScheduledActivity)
	for _, entry := range entries {
		key := entry.WeekendKey
		if key == "" {
			key = p.current
		}
		p.weekends[key] = append(p.weekends[key], entry)
		if entry.Clock > p.clock {
			p.clock = entry.Clock
		}
	}
}

// LastModified returns the greatest UpdatedAt across all partitions, or the
// zero time when the store is empty.
func (p *Planner) LastModified() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var max time.Time
	for _, entries := range p.weekends {
		for _, entry := range entries {
			if entry.UpdatedAt.After(max) {
				max = entry.UpdatedAt
			}
		}
	}
	return max
}
