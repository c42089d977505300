package models

import "time"

const NoParent int64 = -1

const MinInterval = time.Second

type ActiveEvent struct {
	ID       int64
	UID      int64
	ParentID int64
	Text     string
	DueTime  time.Time
}

func (e *ActiveEvent) IsRepeating() bool {
	return e.ParentID != NoParent
}

type RepeatingTemplate struct {
	ID        int64
	UID       int64
	Text      string
	StartTime time.Time
	Interval  time.Duration
}

// ClampInterval keeps repeating intervals at one second or more.
func ClampInterval(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}

	return d.Truncate(time.Second)
}

// NextOccurrence returns the first occurrence at or after now. With strict set
// the occurrence must be strictly after now.
func (t *RepeatingTemplate) NextOccurrence(now time.Time, strict bool) time.Time {
	interval := ClampInterval(t.Interval)

	if t.StartTime.After(now) || (!strict && t.StartTime.Equal(now)) {
		return t.StartTime
	}

	// Stepping in whole seconds keeps spans longer than time.Duration exact.
	intervalSec := int64(interval / time.Second)
	steps := (now.Unix() - t.StartTime.Unix()) / intervalSec
	next := time.Unix(t.StartTime.Unix()+steps*intervalSec, int64(t.StartTime.Nanosecond())).In(t.StartTime.Location())

	for next.Before(now) || (strict && next.Equal(now)) {
		next = next.Add(interval)
	}

	return next
}

// DueReminder is an extracted event paired with its owner.
type DueReminder struct {
	UID       int64
	Command   Command
	Repeating bool
}
