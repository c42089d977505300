package models

import "time"

type CommandType string

const (
	CommandStart     CommandType = "/start"
	CommandHelp      CommandType = "/help"
	CommandHelpMore  CommandType = "/help more"
	CommandList      CommandType = "/list"
	CommandAt        CommandType = "/at"
	CommandDeleteRep CommandType = "/delete_rep"
)

type CommandKind int

const (
	OneTime CommandKind = iota
	Repeating
)

func (k CommandKind) String() string {
	if k == Repeating {
		return "repeating"
	}

	return "one_time"
}

// Command is a parsed reminder request. For OneTime, Time is the due time.
// For Repeating, Time is the first occurrence and Interval the period.
type Command struct {
	Kind     CommandKind
	Time     time.Time
	Interval time.Duration
	Text     string
}

func NewOneTime(due time.Time, text string) Command {
	return Command{Kind: OneTime, Time: due, Text: text}
}

func NewRepeating(start time.Time, interval time.Duration, text string) Command {
	return Command{Kind: Repeating, Time: start, Interval: interval, Text: text}
}

func (c Command) IsRepeating() bool {
	return c.Kind == Repeating
}
