package models

import "time"

type UICommandKind string

const (
	UISend           UICommandKind = "send"
	UICalendar       UICommandKind = "calendar"
	UIKeyboard       UICommandKind = "keyboard"
	UIDeleteMessage  UICommandKind = "delete_message"
	UIDeleteKeyboard UICommandKind = "delete_keyboard"
)

type KeyboardKind string

const (
	KeyboardMain   KeyboardKind = "main"
	KeyboardHour   KeyboardKind = "hour"
	KeyboardMinute KeyboardKind = "minute"
)

type CalendarView struct {
	Year      int        `json:"year"`
	Month     time.Month `json:"month"`
	UTCOffset int        `json:"tz"`
	Message   string     `json:"message"`
	// MsgID set means the calendar replaces the keyboard of that message.
	MsgID *int `json:"msg_id,omitempty"`
}

// UICommand is one instruction for the chat transport.
type UICommand struct {
	Kind     UICommandKind `json:"kind"`
	Text     string        `json:"text,omitempty"`
	Keyboard KeyboardKind  `json:"keyboard,omitempty"`
	Calendar *CalendarView `json:"calendar,omitempty"`
	MsgID    int           `json:"msg_id,omitempty"`
}

func SendText(text string) UICommand {
	return UICommand{Kind: UISend, Text: text}
}

func ShowKeyboard(kind KeyboardKind, text string) UICommand {
	return UICommand{Kind: UIKeyboard, Keyboard: kind, Text: text}
}

func ShowCalendar(view CalendarView) UICommand {
	return UICommand{Kind: UICalendar, Calendar: &view}
}

func DeleteMessage(msgID int) UICommand {
	return UICommand{Kind: UIDeleteMessage, MsgID: msgID}
}

func DeleteKeyboard(msgID int) UICommand {
	return UICommand{Kind: UIDeleteKeyboard, MsgID: msgID}
}

// Targets reports whether the command edits or removes the given message.
func (c UICommand) Targets(msgID int) bool {
	switch c.Kind {
	case UIDeleteMessage, UIDeleteKeyboard:
		return c.MsgID == msgID
	case UICalendar:
		return c.Calendar != nil && c.Calendar.MsgID != nil && *c.Calendar.MsgID == msgID
	default:
		return false
	}
}
