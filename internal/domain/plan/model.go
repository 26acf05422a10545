package plan

import (
	"time"

	"weekendly/internal/domain/activity"
)

// Day is one of the four plannable days of a weekend or long weekend.
type Day string

const (
	DayFriday   Day = "friday"
	DaySaturday Day = "saturday"
	DaySunday   Day = "sunday"
	DayMonday   Day = "monday"
)

// Valid reports whether d is a plannable day.
func (d Day) Valid() bool {
	switch d {
	case DayFriday, DaySaturday, DaySunday, DayMonday:
		return true
	}
	return false
}

// SyncStatus tracks whether a scheduled activity has been mirrored into
// durable storage.
type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusPending SyncStatus = "pending"
	SyncStatusError   SyncStatus = "error"
)

// ScheduledActivity is a planning-time instance of a catalog activity.
//
// A multi-hour activity is represented as a group: exactly one main entry at
// the slot the user dropped it on, plus one blocked continuation entry per
// additional hour, each pointing back at the main entry via ParentID.
// Group members are created, moved, and removed together.
type ScheduledActivity struct {
	activity.Activity

	ScheduledID   string     `json:"scheduled_id"`
	WeekendKey    string     `json:"weekend_key"`
	Day           Day        `json:"day"`
	StartSlot     string     `json:"start_slot"`
	EndSlot       string     `json:"end_slot"`
	Notes         string     `json:"notes,omitempty"`
	Completed     bool       `json:"completed"`
	IsMain        bool       `json:"is_main"`
	IsBlocked     bool       `json:"is_blocked"`
	ParentID      string     `json:"parent_id,omitempty"`
	SpansDuration bool       `json:"spans_duration"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Clock         int64      `json:"clock"`
	SyncStatus    SyncStatus `json:"sync_status"`
}

// GroupID returns the scheduled id of the group's main entry.
func (s ScheduledActivity) GroupID() string {
	if s.IsBlocked && s.ParentID != "" {
		return s.ParentID
	}
	return s.ScheduledID
}

// WeekendKey derives the partition identifier for a plan spanning the given
// first and last days.
func WeekendKey(first, last time.Time) string {
	return first.Format("2006-01-02") + "_" + last.Format("2006-01-02")
}
