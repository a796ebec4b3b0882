package models

import (
	"time"
)

// SessionState is where a session sits in its lifecycle.
type SessionState string

const (
	SessionUnstarted SessionState = "unstarted"
	SessionActive    SessionState = "active"
	SessionCompleted SessionState = "completed"
)

// Session represents one timed unit of work on a task
type Session struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	TaskID uint `gorm:"not null;index" json:"task_id"`
	// UserID duplicates the owning user of Task.Project so the active session
	// can be found (and kept unique) with a single indexed lookup.
	UserID    uint       `gorm:"not null;index" json:"user_id"`
	StartTime *time.Time `gorm:"index" json:"start_time"`
	EndTime   *time.Time `json:"end_time"`

	// Relationships
	Task Task `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"task"`
}

// State reports the lifecycle state derived from the timestamps.
func (s Session) State() SessionState {
	switch {
	case s.StartTime == nil:
		return SessionUnstarted
	case s.EndTime == nil:
		return SessionActive
	default:
		return SessionCompleted
	}
}

// IsActive reports whether the session is the running timer.
func (s Session) IsActive() bool {
	return s.State() == SessionActive
}

// DurationSeconds returns the elapsed whole seconds between start and end.
// A session missing either timestamp counts as zero, and an end before the
// start is clamped to zero.
func (s Session) DurationSeconds() int64 {
	if s.StartTime == nil || s.EndTime == nil {
		return 0
	}
	seconds := int64(s.EndTime.Sub(*s.StartTime) / time.Second)
	if seconds < 0 {
		return 0
	}
	return seconds
}

// Elapsed is the running time of a session at instant now. Completed sessions
// return their fixed duration.
func (s Session) Elapsed(now time.Time) time.Duration {
	switch s.State() {
	case SessionActive:
		if now.Before(*s.StartTime) {
			return 0
		}
		return now.Sub(*s.StartTime).Truncate(time.Second)
	case SessionCompleted:
		return time.Duration(s.DurationSeconds()) * time.Second
	default:
		return 0
	}
}
