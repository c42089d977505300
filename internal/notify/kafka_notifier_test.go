package notify_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-remu/internal/notify"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}

	w.messages = append(w.messages, msgs...)

	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaNotifier_Notify(t *testing.T) {
	writer := &recordingWriter{}
	notifier := notify.NewKafkaNotifierWithWriter(writer, "remu-fired", testLogger())
	reminder := testReminder()

	require.NoError(t, notifier.Notify(context.Background(), reminder))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, []byte("42"), msg.Key)
	assert.Equal(t, reminder.FiredAt, msg.Time)

	var payload notify.ReminderMessage

	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, notify.NewReminderMessage(reminder), payload)

	require.NoError(t, notifier.Close())
	assert.True(t, writer.closed)
}

func TestKafkaNotifier_WriteFailure(t *testing.T) {
	writer := &recordingWriter{err: assert.AnError}
	notifier := notify.NewKafkaNotifierWithWriter(writer, "remu-fired", testLogger())

	err := notifier.Notify(context.Background(), testReminder())
	assert.ErrorIs(t, err, assert.AnError)
}
