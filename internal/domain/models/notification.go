package models

import "time"

// FiredReminder describes a reminder delivered by the scheduler.
type FiredReminder struct {
	ID        string
	UID       int64
	ChatID    int64
	Text      string
	DueTime   time.Time
	FiredAt   time.Time
	Repeating bool
}
