package dialog_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/central-university-dev/go-remu/internal/bot/dialog"
	"github.com/central-university-dev/go-remu/internal/bot/service"
	domainerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
	"github.com/central-university-dev/go-remu/internal/infrastructure/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUID int64 = 1

func newMachine(t *testing.T) (*dialog.Machine, *service.EventStore) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := service.NewEventStore(
		memory.NewUserRepository(),
		memory.NewActiveEventRepository(),
		memory.NewTemplateRepository(),
		memory.NewTransactor(),
		logger,
	)

	require.NoError(t, store.AddUser(context.Background(), &models.User{UID: testUID, ChatID: 100, UTCOffset: -3}))

	return dialog.NewMachine(store, logger), store
}

func startTime() time.Time {
	return time.Unix(60, 0).UTC()
}

func ptr[T any](v T) *T {
	return &v
}

func TestMachine_Ready_DurationText(t *testing.T) {
	machine, store := newMachine(t)
	ctx := context.Background()

	res, err := machine.Process(ctx, dialog.ReadyToProcess{}, dialog.TextEvent{UID: testUID, MsgID: 1, Input: "1s test"}, startTime())
	require.NoError(t, err)

	assert.Equal(t, []models.UICommand{models.SendText("I'll remind you today at 03:01\ntest")}, res.Commands)
	assert.Equal(t, dialog.ReadyToProcess{}, res.Next)

	events, err := store.GetAllActive(ctx, testUID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, time.Unix(61, 0).UTC(), events[0].DueTime)

	res, err = machine.Process(ctx, dialog.ReadyToProcess{}, dialog.TextEvent{UID: testUID, MsgID: 2, Input: "/list"}, startTime())
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{models.SendText("1) test : _ 1 Jan  3.01_\n")}, res.Commands)
}

func TestMachine_Ready_Commands(t *testing.T) {
	machine, _ := newMachine(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		expected []models.UICommand
	}{
		{
			name:     "Not a command shows main keyboard",
			input:    "hello",
			expected: []models.UICommand{models.ShowKeyboard(models.KeyboardMain, "hello")},
		},
		{
			name:     "Help",
			input:    "/help",
			expected: []models.UICommand{models.SendText(dialog.MainHelp)},
		},
		{
			name:     "Detailed help",
			input:    "/help more",
			expected: []models.UICommand{models.SendText(dialog.DetailedHelp)},
		},
		{
			name:     "Empty list",
			input:    "/list",
			expected: []models.UICommand{models.SendText(dialog.MsgNoActive)},
		},
		{
			name:     "No repeating events",
			input:    "/delete_rep",
			expected: []models.UICommand{models.SendText(dialog.MsgNoRepeating)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := machine.Process(ctx, dialog.ReadyToProcess{}, dialog.TextEvent{UID: testUID, Input: tt.input}, startTime())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.Commands)
			assert.Equal(t, dialog.ReadyToProcess{}, res.Next)
		})
	}
}

func TestMachine_Ready_UnknownCommand(t *testing.T) {
	machine, _ := newMachine(t)

	_, err := machine.Process(context.Background(), dialog.ReadyToProcess{},
		dialog.TextEvent{UID: testUID, Input: "/remind"}, startTime())

	var unknown *domainerrors.ErrUnknownCommand

	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "/remind", unknown.Command)
}

func TestMachine_CalendarFlow_TypedTime(t *testing.T) {
	machine, _ := newMachine(t)
	ctx := context.Background()
	now := startTime()

	res, err := machine.Process(ctx, dialog.ReadyToProcess{}, dialog.TextEvent{UID: testUID, MsgID: 1, Input: "/at"}, now)
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{models.ShowCalendar(models.CalendarView{
		Year:      1970,
		Month:     time.January,
		UTCOffset: -3,
		Message:   dialog.MsgExpectDate,
	})}, res.Commands)

	state := res.Next

	for _, callback := range []string{dialog.CallbackNextMonth, dialog.CallbackNextMonth, dialog.CallbackPrevMonth} {
		res, err = machine.ProcessKeyboard(ctx, state, dialog.ButtonEvent{UID: testUID, MsgID: 2, CallbackData: callback}, now)
		require.NoError(t, err)
		require.Len(t, res.Commands, 1)
		assert.True(t, res.Commands[0].Targets(2))

		state = res.Next
	}

	assert.Equal(t, dialog.AtCalendar{Year: 1970, Month: time.February, UTCOffset: -3}, state)

	res, err = machine.ProcessKeyboard(ctx, state, dialog.ButtonEvent{UID: testUID, MsgID: 2, CallbackData: "calendar-day-5"}, now)
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{
		models.DeleteMessage(2),
		models.ShowKeyboard(models.KeyboardHour, dialog.MsgExpectTime),
	}, res.Commands)
	assert.Equal(t, dialog.AtTimeHour{Year: 1970, Month: time.February, Day: 5}, res.Next)

	res, err = machine.Process(ctx, res.Next, dialog.TextEvent{UID: testUID, MsgID: 3, Input: "10"}, now)
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{models.ShowKeyboard(models.KeyboardMinute, "Ok, 10. Now choose minute")}, res.Commands)

	res, err = machine.ProcessKeyboard(ctx, res.Next, dialog.ButtonEvent{UID: testUID, MsgID: 4, CallbackData: "time_minute:30"}, now)
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{models.DeleteMessage(4), models.SendText(dialog.MsgExpectText)}, res.Commands)
	assert.Equal(t, dialog.AtTimeText{Year: 1970, Month: time.February, Day: 5, Hour: 10, Minute: 30}, res.Next)

	res, err = machine.Process(ctx, res.Next, dialog.TextEvent{UID: testUID, MsgID: 5, Input: "buy milk"}, now)
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{models.SendText("I'll remind you February  5 at 10:30\nbuy milk")}, res.Commands)
	assert.Equal(t, dialog.ReadyToProcess{}, res.Next)
}

func TestMachine_CalendarFlow_PendingText(t *testing.T) {
	machine, _ := newMachine(t)
	ctx := context.Background()
	now := startTime()

	res, err := machine.ProcessKeyboard(ctx, dialog.ReadyToProcess{},
		dialog.ButtonEvent{UID: testUID, MsgID: 20, CallbackData: dialog.CallbackAt, MsgText: "call mom"}, now)
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{models.ShowCalendar(models.CalendarView{
		Year:      1970,
		Month:     time.January,
		UTCOffset: -3,
		Message:   dialog.MsgExpectDate,
		MsgID:     ptr(20),
	})}, res.Commands)

	res, err = machine.ProcessKeyboard(ctx, res.Next, dialog.ButtonEvent{UID: testUID, MsgID: 20, CallbackData: dialog.CallbackTomorrow}, now)
	require.NoError(t, err)
	assert.Equal(t, dialog.AtTimeHour{Year: 1970, Month: time.January, Day: 2, PendingText: ptr("call mom")}, res.Next)

	res, err = machine.ProcessKeyboard(ctx, res.Next, dialog.ButtonEvent{UID: testUID, MsgID: 21, CallbackData: "time_hour:9"}, now)
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{
		models.DeleteMessage(21),
		models.ShowKeyboard(models.KeyboardMinute, "Ok, 9. Now choose minute"),
	}, res.Commands)

	res, err = machine.ProcessKeyboard(ctx, res.Next, dialog.ButtonEvent{UID: testUID, MsgID: 22, CallbackData: "time_minute:15"}, now)
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{models.SendText("I'll remind you tomorrow at 09:15\ncall mom")}, res.Commands)
	assert.Equal(t, dialog.ReadyToProcess{}, res.Next)
}

func TestMachine_Calendar_TodayUsesLocalDate(t *testing.T) {
	machine, _ := newMachine(t)
	now := time.Date(2024, time.January, 1, 22, 30, 0, 0, time.UTC)
	state := dialog.AtCalendar{Year: 2024, Month: time.January, UTCOffset: -3}

	res, err := machine.ProcessKeyboard(context.Background(), state,
		dialog.ButtonEvent{UID: testUID, MsgID: 1, CallbackData: dialog.CallbackToday}, now)
	require.NoError(t, err)
	assert.Equal(t, dialog.AtTimeHour{Year: 2024, Month: time.January, Day: 2}, res.Next)
}

func TestMachine_Calendar_MonthWraps(t *testing.T) {
	machine, _ := newMachine(t)
	ctx := context.Background()

	res, err := machine.ProcessKeyboard(ctx, dialog.AtCalendar{Year: 2024, Month: time.December},
		dialog.ButtonEvent{UID: testUID, CallbackData: dialog.CallbackNextMonth}, startTime())
	require.NoError(t, err)
	assert.Equal(t, dialog.AtCalendar{Year: 2025, Month: time.January}, res.Next)

	res, err = machine.ProcessKeyboard(ctx, dialog.AtCalendar{Year: 2024, Month: time.January},
		dialog.ButtonEvent{UID: testUID, CallbackData: dialog.CallbackPrevMonth}, startTime())
	require.NoError(t, err)
	assert.Equal(t, dialog.AtCalendar{Year: 2023, Month: time.December}, res.Next)
}

func TestMachine_Calendar_Errors(t *testing.T) {
	machine, _ := newMachine(t)
	ctx := context.Background()
	state := dialog.AtCalendar{Year: 2023, Month: time.February}

	res, err := machine.ProcessKeyboard(ctx, state, dialog.ButtonEvent{UID: testUID, MsgID: 5, CallbackData: dialog.CallbackIgnore}, startTime())
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{models.DeleteMessage(5)}, res.Commands)
	assert.Nil(t, res.Next)

	for _, callback := range []string{"calendar-day-29", "calendar-day-0", "calendar-day-x", "bogus"} {
		_, err = machine.ProcessKeyboard(ctx, state, dialog.ButtonEvent{UID: testUID, CallbackData: callback}, startTime())
		assert.ErrorIs(t, err, &domainerrors.ErrStateMismatch{}, callback)
	}

	_, err = machine.Process(ctx, state, dialog.TextEvent{UID: testUID, Input: "5"}, startTime())
	assert.ErrorIs(t, err, &domainerrors.ErrStateMismatch{})
}

func TestMachine_TimeInputValidation(t *testing.T) {
	machine, _ := newMachine(t)
	ctx := context.Background()
	hour := dialog.AtTimeHour{Year: 2024, Month: time.March, Day: 3}
	minute := dialog.AtTimeMinute{Year: 2024, Month: time.March, Day: 3, Hour: 4}

	tests := []struct {
		name     string
		run      func() (dialog.Result, error)
		expected string
	}{
		{
			name: "Hour out of range",
			run: func() (dialog.Result, error) {
				return machine.Process(ctx, hour, dialog.TextEvent{UID: testUID, Input: "24"}, startTime())
			},
			expected: dialog.MsgBadHour,
		},
		{
			name: "Hour not a number",
			run: func() (dialog.Result, error) {
				return machine.Process(ctx, hour, dialog.TextEvent{UID: testUID, Input: "noon"}, startTime())
			},
			expected: dialog.MsgBadHour,
		},
		{
			name: "Hour keyboard garbage",
			run: func() (dialog.Result, error) {
				return machine.ProcessKeyboard(ctx, hour, dialog.ButtonEvent{UID: testUID, CallbackData: "time_minute:15"}, startTime())
			},
			expected: dialog.MsgBadKeyboard,
		},
		{
			name: "Minute out of range",
			run: func() (dialog.Result, error) {
				return machine.Process(ctx, minute, dialog.TextEvent{UID: testUID, Input: "60"}, startTime())
			},
			expected: dialog.MsgBadMinute,
		},
		{
			name: "Minute keyboard garbage",
			run: func() (dialog.Result, error) {
				return machine.ProcessKeyboard(ctx, minute, dialog.ButtonEvent{UID: testUID, CallbackData: "time_minute:75"}, startTime())
			},
			expected: dialog.MsgBadKeyboard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.run()
			require.NoError(t, err)
			assert.Equal(t, []models.UICommand{models.SendText(tt.expected)}, res.Commands)
			assert.Equal(t, dialog.ReadyToProcess{}, res.Next)
		})
	}
}

func TestMachine_AtTimeText_IgnoresButtons(t *testing.T) {
	machine, _ := newMachine(t)

	res, err := machine.ProcessKeyboard(context.Background(), dialog.AtTimeText{Year: 2024, Month: time.May, Day: 1},
		dialog.ButtonEvent{UID: testUID, CallbackData: "time_hour:3"}, startTime())
	require.NoError(t, err)
	assert.Empty(t, res.Commands)
	assert.Nil(t, res.Next)
}

func TestMachine_AfterFlow(t *testing.T) {
	machine, _ := newMachine(t)
	ctx := context.Background()
	now := startTime()

	res, err := machine.ProcessKeyboard(ctx, dialog.ReadyToProcess{},
		dialog.ButtonEvent{UID: testUID, MsgID: 7, CallbackData: dialog.CallbackAfter, MsgText: "tea"}, now)
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{models.SendText(dialog.MsgExpectDuration)}, res.Commands)
	assert.Equal(t, dialog.AfterInput{PendingText: "tea"}, res.Next)

	_, err = machine.ProcessKeyboard(ctx, res.Next, dialog.ButtonEvent{UID: testUID, CallbackData: "5m"}, now)
	assert.ErrorIs(t, err, &domainerrors.ErrStateMismatch{})

	_, err = machine.Process(ctx, res.Next, dialog.TextEvent{UID: testUID, Input: "soon"}, now)
	assert.ErrorIs(t, err, &domainerrors.ErrParse{})

	res, err = machine.Process(ctx, res.Next, dialog.TextEvent{UID: testUID, Input: "5m"}, now)
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{
		models.SendText("Resulting command:\n5m tea\nI'll remind you today at 03:06\ntea"),
	}, res.Commands)
}

func TestMachine_QuickDurationButton(t *testing.T) {
	machine, _ := newMachine(t)
	ctx := context.Background()

	res, err := machine.ProcessKeyboard(ctx, dialog.ReadyToProcess{},
		dialog.ButtonEvent{UID: testUID, MsgID: 7, CallbackData: "30m", MsgText: "stretch"}, startTime())
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{
		models.SendText("Resulting command:\n30m stretch\nI'll remind you today at 03:31\nstretch"),
	}, res.Commands)

	var parseErr *domainerrors.ErrParse

	_, err = machine.ProcessKeyboard(ctx, dialog.ReadyToProcess{},
		dialog.ButtonEvent{UID: testUID, MsgID: 7, CallbackData: "soon", MsgText: "stretch"}, startTime())
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "soon stretch", parseErr.Input)
}

func TestMachine_DeleteRepeating(t *testing.T) {
	machine, store := newMachine(t)
	ctx := context.Background()
	now := startTime()

	require.True(t, store.Put(ctx, testUID, models.NewRepeating(now.Add(time.Hour), 24*time.Hour, "water"), now))
	require.True(t, store.Put(ctx, testUID, models.NewRepeating(now.Add(time.Minute), time.Hour, "stretch"), now))

	res, err := machine.Process(ctx, dialog.ReadyToProcess{}, dialog.TextEvent{UID: testUID, Input: "/delete_rep"}, now)
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{models.SendText(dialog.MsgRepeatingHeader + "0) stretch\n1) water")}, res.Commands)

	choose, ok := res.Next.(dialog.RepDeleteChoose)
	require.True(t, ok)
	require.Len(t, choose.IDs, 2)

	res, err = machine.Process(ctx, choose, dialog.TextEvent{UID: testUID, Input: "first"}, now)
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{models.SendText(dialog.MsgNotNumber)}, res.Commands)

	res, err = machine.Process(ctx, choose, dialog.TextEvent{UID: testUID, Input: "2"}, now)
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{models.SendText(dialog.MsgOutOfLimit)}, res.Commands)

	_, err = machine.ProcessKeyboard(ctx, choose, dialog.ButtonEvent{UID: testUID, CallbackData: "Ok"}, now)
	assert.ErrorIs(t, err, &domainerrors.ErrInternalLogic{})

	res, err = machine.Process(ctx, choose, dialog.TextEvent{UID: testUID, Input: " 1 "}, now)
	require.NoError(t, err)
	assert.Equal(t, []models.UICommand{models.SendText(dialog.MsgDone)}, res.Commands)
	assert.Equal(t, dialog.ReadyToProcess{}, res.Next)

	templates, err := store.GetAllRepeating(ctx, testUID)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "stretch", templates[0].Text)

	_, err = machine.Process(ctx, choose, dialog.TextEvent{UID: testUID, Input: "1"}, now)
	assert.ErrorIs(t, err, &domainerrors.ErrPersistence{})
}
