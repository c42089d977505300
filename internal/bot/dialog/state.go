package dialog

import "time"

// State is the per-user dialog step. The set of variants is closed: only the
// types declared in this file implement it.
type State interface {
	Name() string
	dialogState()
}

type ReadyToProcess struct{}

// AtCalendar shows a month grid. PendingText is set when the flow was started
// from a button under an unparsed message.
type AtCalendar struct {
	Year        int
	Month       time.Month
	UTCOffset   int
	PendingText *string
}

type AtTimeHour struct {
	Year        int
	Month       time.Month
	Day         int
	PendingText *string
}

type AtTimeMinute struct {
	Year        int
	Month       time.Month
	Day         int
	Hour        int
	PendingText *string
}

type AtTimeText struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
}

type AfterInput struct {
	PendingText string
}

// RepDeleteChoose holds template ids in the order they were listed.
type RepDeleteChoose struct {
	IDs []int64
}

func (ReadyToProcess) Name() string  { return "ready_to_process" }
func (AtCalendar) Name() string      { return "at_calendar" }
func (AtTimeHour) Name() string      { return "at_time_hour" }
func (AtTimeMinute) Name() string    { return "at_time_minute" }
func (AtTimeText) Name() string      { return "at_time_text" }
func (AfterInput) Name() string      { return "after_input" }
func (RepDeleteChoose) Name() string { return "rep_delete_choose" }

func (ReadyToProcess) dialogState()  {}
func (AtCalendar) dialogState()      {}
func (AtTimeHour) dialogState()      {}
func (AtTimeMinute) dialogState()    {}
func (AtTimeText) dialogState()      {}
func (AfterInput) dialogState()      {}
func (RepDeleteChoose) dialogState() {}
