package notify

import (
	"context"
	"time"

	"github.com/central-university-dev/go-remu/internal/domain/models"
)

// Notifier publishes fired reminders to a sink outside the chat.
type Notifier interface {
	Notify(ctx context.Context, reminder models.FiredReminder) error
	Close() error
}

// ReminderMessage is the wire form shared by the Kafka and webhook transports.
type ReminderMessage struct {
	ID        string    `json:"id"`
	UID       int64     `json:"uid"`
	ChatID    int64     `json:"chat_id"`
	Text      string    `json:"text"`
	DueTime   time.Time `json:"due_time"`
	FiredAt   time.Time `json:"fired_at"`
	Repeating bool      `json:"repeating"`
}

func NewReminderMessage(reminder models.FiredReminder) ReminderMessage {
	return ReminderMessage{
		ID:        reminder.ID,
		UID:       reminder.UID,
		ChatID:    reminder.ChatID,
		Text:      reminder.Text,
		DueTime:   reminder.DueTime.UTC(),
		FiredAt:   reminder.FiredAt.UTC(),
		Repeating: reminder.Repeating,
	}
}
