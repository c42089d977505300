package engine_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-remu/internal/bot/dialog"
	"github.com/central-university-dev/go-remu/internal/bot/engine"
	"github.com/central-university-dev/go-remu/internal/bot/service"
	domainerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
	"github.com/central-university-dev/go-remu/internal/infrastructure/repositories/memory"
)

const (
	testUID    int64 = 1
	testChatID int64 = 500
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newStore() *service.EventStore {
	return service.NewEventStore(
		memory.NewUserRepository(),
		memory.NewActiveEventRepository(),
		memory.NewTemplateRepository(),
		memory.NewTransactor(),
		testLogger(),
	)
}

func newEngine(t *testing.T) (*engine.Engine, *service.EventStore) {
	t.Helper()

	store := newStore()
	eng := engine.NewEngine(store, time.Minute, testLogger())

	_, err := eng.AddUser(context.Background(), &models.User{UID: testUID, ChatID: testChatID, UTCOffset: -3})
	require.NoError(t, err)

	return eng, store
}

func TestEngine_AddUser(t *testing.T) {
	store := newStore()
	eng := engine.NewEngine(store, time.Minute, testLogger())
	ctx := context.Background()
	user := &models.User{UID: testUID, ChatID: testChatID, UTCOffset: -3}

	out, err := eng.AddUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, engine.Outbound{
		UID:      testUID,
		ChatID:   testChatID,
		Commands: []models.UICommand{models.SendText(dialog.MsgGreeting)},
	}, out)

	out, err = eng.AddUser(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{models.SendText(dialog.MsgGreeting)}, out.Commands)

	err = store.AddUser(ctx, user)
	assert.ErrorIs(t, err, &domainerrors.ErrUserAlreadyExists{})

	state, ok := eng.State(testUID)
	require.True(t, ok)
	assert.Equal(t, dialog.ReadyToProcess{}, state)
}

func TestEngine_HandleText_WithoutStart(t *testing.T) {
	eng := engine.NewEngine(newStore(), time.Minute, testLogger())

	_, err := eng.HandleText(context.Background(), engine.TextMessage{UID: 9, ChatID: 9, MsgID: 1, Text: "1s x"}, time.Unix(60, 0))
	assert.ErrorIs(t, err, &domainerrors.ErrNoDialogState{})

	_, ok := eng.State(9)
	assert.False(t, ok)
}

func TestEngine_HandleText_ErrorResetsDialog(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()
	now := time.Unix(60, 0).UTC()

	out, err := eng.HandleText(ctx, engine.TextMessage{UID: testUID, MsgID: 1, Text: "/at"}, now)
	require.NoError(t, err)
	assert.Equal(t, testChatID, out.ChatID)
	require.NotNil(t, out.ReplyTo)
	assert.Equal(t, 1, *out.ReplyTo)

	state, _ := eng.State(testUID)
	assert.IsType(t, dialog.AtCalendar{}, state)

	_, err = eng.HandleText(ctx, engine.TextMessage{UID: testUID, MsgID: 2, Text: "hello"}, now)
	require.Error(t, err)

	state, _ = eng.State(testUID)
	assert.Equal(t, dialog.ReadyToProcess{}, state)

	reply := eng.ErrorReply(testUID, testChatID, nil, err)
	assert.Equal(t, []models.UICommand{models.SendText(engine.ErrorPrefix + err.Error())}, reply.Commands)
}

func TestEngine_HandleButton(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()
	now := time.Unix(60, 0).UTC()

	tests := []struct {
		name     string
		msg      engine.KeyboardMessage
		expected []models.UICommand
	}{
		{
			name:     "Ignore deletes the message",
			msg:      engine.KeyboardMessage{UID: testUID, MsgID: 3, CallbackData: dialog.CallbackIgnore},
			expected: []models.UICommand{models.DeleteMessage(3)},
		},
		{
			name:     "Ok removes the keyboard",
			msg:      engine.KeyboardMessage{UID: testUID, MsgID: 3, CallbackData: dialog.CallbackOk},
			expected: []models.UICommand{models.DeleteKeyboard(3)},
		},
		{
			name: "Quick duration removes the keyboard after reply",
			msg:  engine.KeyboardMessage{UID: testUID, MsgID: 4, CallbackData: "5m", MsgText: "tea"},
			expected: []models.UICommand{
				models.SendText("Resulting command:\n5m tea\nI'll remind you today at 03:06\ntea"),
				models.DeleteKeyboard(4),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := eng.HandleButton(ctx, tt.msg, now)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.Commands)
			assert.Equal(t, testChatID, out.ChatID)
		})
	}
}

func TestEngine_HandleButton_CalendarEditsInPlace(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()
	now := time.Unix(60, 0).UTC()

	out, err := eng.HandleButton(ctx, engine.KeyboardMessage{UID: testUID, MsgID: 8, CallbackData: dialog.CallbackAt, MsgText: "x"}, now)
	require.NoError(t, err)
	require.Len(t, out.Commands, 1)
	assert.Equal(t, models.UICalendar, out.Commands[0].Kind)

	out, err = eng.HandleButton(ctx, engine.KeyboardMessage{UID: testUID, MsgID: 8, CallbackData: dialog.CallbackNextMonth}, now)
	require.NoError(t, err)
	require.Len(t, out.Commands, 1)
	assert.Equal(t, time.February, out.Commands[0].Calendar.Month)
}

func TestEngine_TickAndWakeup(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()
	now := time.Unix(60, 0).UTC()

	assert.Equal(t, time.Minute, eng.TimeUntilNextWakeup(ctx, now))

	require.True(t, store.Put(ctx, testUID, models.NewOneTime(now.Add(5*time.Second), "stand up"), now))
	require.True(t, store.Put(ctx, testUID, models.NewRepeating(now.Add(10*time.Second), time.Hour, "drink"), now))

	assert.Equal(t, 5*time.Second, eng.TimeUntilNextWakeup(ctx, now))
	assert.Equal(t, time.Duration(0), eng.TimeUntilNextWakeup(ctx, now.Add(time.Minute)))

	outbound, fired, err := eng.Tick(ctx, now.Add(10*time.Second))
	require.NoError(t, err)
	require.Len(t, outbound, 2)
	require.Len(t, fired, 2)

	assert.Equal(t, engine.Outbound{
		UID:      testUID,
		ChatID:   testChatID,
		Commands: []models.UICommand{models.ShowKeyboard(models.KeyboardMain, "stand up")},
	}, outbound[0])
	assert.Equal(t, []models.UICommand{models.ShowKeyboard(models.KeyboardMain, "drink")}, outbound[1].Commands)

	assert.False(t, fired[0].Repeating)
	assert.True(t, fired[1].Repeating)
	assert.NotEmpty(t, fired[0].ID)
	assert.NotEqual(t, fired[0].ID, fired[1].ID)
	assert.Equal(t, now.Add(5*time.Second), fired[0].DueTime)
	assert.Equal(t, now.Add(10*time.Second), fired[0].FiredAt)

	assert.Equal(t, time.Hour, eng.TimeUntilNextWakeup(ctx, now.Add(10*time.Second)))
}

func TestEngine_Restore(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	require.NoError(t, store.AddUser(ctx, &models.User{UID: 5, ChatID: 55, UTCOffset: 0}))

	eng := engine.NewEngine(store, time.Minute, testLogger())
	require.NoError(t, eng.Restore(ctx))

	state, ok := eng.State(5)
	require.True(t, ok)
	assert.Equal(t, dialog.ReadyToProcess{}, state)

	out, err := eng.HandleText(ctx, engine.TextMessage{UID: 5, MsgID: 1, Text: "/list"}, time.Unix(60, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(55), out.ChatID)
	assert.Equal(t, []models.UICommand{models.SendText(dialog.MsgNoActive)}, out.Commands)
}

func TestEngine_SubSecondNowIsTruncated(t *testing.T) {
	eng, store := newEngine(t)
	ctx := context.Background()
	sent := time.Unix(60, int64(900*time.Millisecond))

	_, err := eng.HandleText(ctx, engine.TextMessage{UID: testUID, ChatID: testChatID, MsgID: 1, Text: "1s test"}, sent)
	require.NoError(t, err)

	nearest, err := store.NearestWakeup(ctx)
	require.NoError(t, err)
	require.NotNil(t, nearest)
	assert.Equal(t, time.Unix(61, 0), *nearest)
	assert.Equal(t, 100*time.Millisecond, eng.TimeUntilNextWakeup(ctx, sent))

	outbound, _, err := eng.Tick(ctx, time.Unix(60, int64(999*time.Millisecond)))
	require.NoError(t, err)
	assert.Empty(t, outbound)

	outbound, fired, err := eng.Tick(ctx, time.Unix(61, int64(200*time.Millisecond)))
	require.NoError(t, err)
	require.Len(t, outbound, 1)
	assert.Equal(t, time.Unix(61, 0), fired[0].FiredAt)
}
