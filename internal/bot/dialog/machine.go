package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	domainerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
	"github.com/central-university-dev/go-remu/internal/parser"
)

// Store is the part of the event store the dialog works with.
type Store interface {
	Put(ctx context.Context, uid int64, cmd models.Command, now time.Time) bool
	GetAllActive(ctx context.Context, uid int64) ([]*models.ActiveEvent, error)
	GetAllRepeating(ctx context.Context, uid int64) ([]*models.RepeatingTemplate, error)
	DeleteRepeating(ctx context.Context, uid, id int64) bool
	GetUserTimezone(ctx context.Context, uid int64) (int, error)
}

type TextEvent struct {
	UID   int64
	MsgID int
	Input string
}

type ButtonEvent struct {
	UID          int64
	MsgID        int
	CallbackData string
	MsgText      string
}

// Result is the outcome of one dialog step. A nil Next keeps the current state.
type Result struct {
	Commands []models.UICommand
	Next     State
}

func reply(text string, next State) Result {
	return Result{Commands: []models.UICommand{models.SendText(text)}, Next: next}
}

// Machine advances dialog states. It holds no per-user data itself.
type Machine struct {
	store  Store
	logger *slog.Logger
}

func NewMachine(store Store, logger *slog.Logger) *Machine {
	return &Machine{
		store:  store,
		logger: logger,
	}
}

func (m *Machine) Process(ctx context.Context, state State, ev TextEvent, now time.Time) (Result, error) {
	switch s := state.(type) {
	case ReadyToProcess:
		return m.readyProcess(ctx, ev, now)
	case AtCalendar:
		return Result{}, &domainerrors.ErrStateMismatch{
			State:   s.Name(),
			Message: "AtCalendar state cannot handle text input",
		}
	case AtTimeHour:
		return m.hourProcess(s, ev), nil
	case AtTimeMinute:
		return m.minuteProcess(ctx, s, ev, now)
	case AtTimeText:
		return m.textProcess(ctx, s, ev, now)
	case AfterInput:
		return m.afterProcess(ctx, s, ev, now)
	case RepDeleteChoose:
		return m.repDeleteProcess(ctx, s, ev)
	default:
		return Result{}, &domainerrors.ErrInternalLogic{Message: fmt.Sprintf("unknown dialog state %T", state)}
	}
}

func (m *Machine) ProcessKeyboard(ctx context.Context, state State, ev ButtonEvent, now time.Time) (Result, error) {
	switch s := state.(type) {
	case ReadyToProcess:
		return m.readyKeyboard(ctx, ev, now)
	case AtCalendar:
		return m.calendarKeyboard(s, ev, now)
	case AtTimeHour:
		return m.hourKeyboard(s, ev), nil
	case AtTimeMinute:
		return m.minuteKeyboard(ctx, s, ev, now)
	case AtTimeText:
		return Result{}, nil
	case AfterInput:
		return Result{}, &domainerrors.ErrStateMismatch{State: s.Name(), Message: "expect not button, but text"}
	case RepDeleteChoose:
		m.logger.Error("Нажатие кнопки в состоянии выбора события для удаления", "uid", ev.UID)

		return Result{}, &domainerrors.ErrInternalLogic{Message: MsgInternalFailure}
	default:
		return Result{}, &domainerrors.ErrInternalLogic{Message: fmt.Sprintf("unknown dialog state %T", state)}
	}
}

func (m *Machine) readyProcess(ctx context.Context, ev TextEvent, now time.Time) (Result, error) {
	if !strings.HasPrefix(ev.Input, "/") {
		text, ok, err := m.resolve(ctx, ev.UID, ev.Input, now)
		if err != nil {
			return Result{}, err
		}

		if ok {
			return reply(text, ReadyToProcess{}), nil
		}

		return Result{
			Commands: []models.UICommand{models.ShowKeyboard(models.KeyboardMain, ev.Input)},
			Next:     ReadyToProcess{},
		}, nil
	}

	switch models.CommandType(ev.Input) {
	case models.CommandHelpMore:
		return reply(DetailedHelp, ReadyToProcess{}), nil
	case models.CommandHelp:
		return reply(MainHelp, ReadyToProcess{}), nil
	case models.CommandList:
		return m.listActive(ctx, ev.UID)
	case models.CommandAt:
		return m.startCalendar(ctx, ev.UID, nil, nil, now)
	case models.CommandDeleteRep:
		return m.listRepeating(ctx, ev.UID)
	default:
		return Result{}, &domainerrors.ErrUnknownCommand{Command: ev.Input}
	}
}

func (m *Machine) listActive(ctx context.Context, uid int64) (Result, error) {
	utcOffset, err := m.store.GetUserTimezone(ctx, uid)
	if err != nil {
		return Result{}, err
	}

	events, err := m.store.GetAllActive(ctx, uid)
	if err != nil {
		return Result{}, &domainerrors.ErrPersistence{Operation: "list active events"}
	}

	return reply(formatActiveList(events, utcOffset), ReadyToProcess{}), nil
}

func (m *Machine) listRepeating(ctx context.Context, uid int64) (Result, error) {
	templates, err := m.store.GetAllRepeating(ctx, uid)
	if err != nil {
		return Result{}, &domainerrors.ErrPersistence{Operation: "list repeating events"}
	}

	if len(templates) == 0 {
		return reply(MsgNoRepeating, ReadyToProcess{}), nil
	}

	ids := make([]int64, 0, len(templates))
	for _, template := range templates {
		ids = append(ids, template.ID)
	}

	return reply(formatRepeatingList(templates), RepDeleteChoose{IDs: ids}), nil
}

func (m *Machine) readyKeyboard(ctx context.Context, ev ButtonEvent, now time.Time) (Result, error) {
	switch {
	case strings.HasPrefix(ev.CallbackData, CallbackAt):
		pending := ev.MsgText
		msgID := ev.MsgID

		return m.startCalendar(ctx, ev.UID, &pending, &msgID, now)
	case strings.HasPrefix(ev.CallbackData, CallbackAfter):
		return reply(MsgExpectDuration, AfterInput{PendingText: ev.MsgText}), nil
	}

	command := ev.CallbackData + " " + ev.MsgText

	text, ok, err := m.resolve(ctx, ev.UID, command, now)
	if err != nil {
		return Result{}, err
	}

	if !ok {
		m.logger.Warn("Некорректные данные кнопки", "uid", ev.UID, "command", command)

		return Result{}, &domainerrors.ErrParse{Input: command, Reason: "incorrect query data"}
	}

	return reply(fmt.Sprintf("Resulting command:\n%s\n%s", command, text), ReadyToProcess{}), nil
}

func (m *Machine) startCalendar(ctx context.Context, uid int64, pending *string, msgID *int, now time.Time) (Result, error) {
	utcOffset, err := m.store.GetUserTimezone(ctx, uid)
	if err != nil {
		return Result{}, err
	}

	local := LocalTime(now, utcOffset)
	state := AtCalendar{
		Year:        local.Year(),
		Month:       local.Month(),
		UTCOffset:   utcOffset,
		PendingText: pending,
	}

	return Result{
		Commands: []models.UICommand{calendarView(state, msgID)},
		Next:     state,
	}, nil
}

func calendarView(state AtCalendar, msgID *int) models.UICommand {
	return models.ShowCalendar(models.CalendarView{
		Year:      state.Year,
		Month:     state.Month,
		UTCOffset: state.UTCOffset,
		Message:   MsgExpectDate,
		MsgID:     msgID,
	})
}

func (m *Machine) calendarKeyboard(s AtCalendar, ev ButtonEvent, now time.Time) (Result, error) {
	switch {
	case ev.CallbackData == CallbackNextMonth || ev.CallbackData == CallbackPrevMonth:
		next := s

		if ev.CallbackData == CallbackNextMonth {
			next.Month++
			if next.Month > time.December {
				next.Month = time.January
				next.Year++
			}
		} else {
			next.Month--
			if next.Month < time.January {
				next.Month = time.December
				next.Year--
			}
		}

		msgID := ev.MsgID

		return Result{
			Commands: []models.UICommand{calendarView(next, &msgID)},
			Next:     next,
		}, nil
	case strings.HasPrefix(ev.CallbackData, CallbackDayPrefix):
		day, err := strconv.Atoi(strings.TrimPrefix(ev.CallbackData, CallbackDayPrefix))
		if err != nil || day < 1 || day > daysIn(s.Year, s.Month) {
			return Result{}, &domainerrors.ErrStateMismatch{
				State:   s.Name(),
				Message: "Incorrect callback data format: " + ev.CallbackData,
			}
		}

		return hourPrompt(ev.MsgID, AtTimeHour{Year: s.Year, Month: s.Month, Day: day, PendingText: s.PendingText}), nil
	case ev.CallbackData == CallbackToday || ev.CallbackData == CallbackTomorrow:
		local := LocalTime(now, s.UTCOffset)
		if ev.CallbackData == CallbackTomorrow {
			local = local.AddDate(0, 0, 1)
		}

		return hourPrompt(ev.MsgID, AtTimeHour{
			Year:        local.Year(),
			Month:       local.Month(),
			Day:         local.Day(),
			PendingText: s.PendingText,
		}), nil
	case ev.CallbackData == CallbackIgnore:
		return Result{Commands: []models.UICommand{models.DeleteMessage(ev.MsgID)}}, nil
	default:
		m.logger.Error("Некорректные данные кнопки календаря", "uid", ev.UID, "callback", ev.CallbackData)

		return Result{}, &domainerrors.ErrStateMismatch{
			State:   s.Name(),
			Message: "Incorrect callback data format: " + ev.CallbackData,
		}
	}
}

func hourPrompt(msgID int, next AtTimeHour) Result {
	return Result{
		Commands: []models.UICommand{
			models.DeleteMessage(msgID),
			models.ShowKeyboard(models.KeyboardHour, MsgExpectTime),
		},
		Next: next,
	}
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m *Machine) hourProcess(s AtTimeHour, ev TextEvent) Result {
	hour, ok := parseBounded(ev.Input, 23)
	if !ok {
		return reply(MsgBadHour, ReadyToProcess{})
	}

	return minutePrompt(s, hour, nil)
}

func (m *Machine) hourKeyboard(s AtTimeHour, ev ButtonEvent) Result {
	if !strings.HasPrefix(ev.CallbackData, CallbackHourPrefix) {
		return reply(MsgBadKeyboard, ReadyToProcess{})
	}

	hour, ok := parseBounded(strings.TrimPrefix(ev.CallbackData, CallbackHourPrefix), 23)
	if !ok {
		return reply(MsgBadKeyboard, ReadyToProcess{})
	}

	msgID := ev.MsgID

	return minutePrompt(s, hour, &msgID)
}

func minutePrompt(s AtTimeHour, hour int, msgID *int) Result {
	commands := make([]models.UICommand, 0, 2)
	if msgID != nil {
		commands = append(commands, models.DeleteMessage(*msgID))
	}

	commands = append(commands, models.ShowKeyboard(models.KeyboardMinute, fmt.Sprintf("Ok, %d. Now choose minute", hour)))

	return Result{
		Commands: commands,
		Next: AtTimeMinute{
			Year:        s.Year,
			Month:       s.Month,
			Day:         s.Day,
			Hour:        hour,
			PendingText: s.PendingText,
		},
	}
}

func (m *Machine) minuteProcess(ctx context.Context, s AtTimeMinute, ev TextEvent, now time.Time) (Result, error) {
	minute, ok := parseBounded(ev.Input, 59)
	if !ok {
		return reply(MsgBadMinute, ReadyToProcess{}), nil
	}

	return m.minuteNextStage(ctx, s, minute, ev.UID, nil, now)
}

func (m *Machine) minuteKeyboard(ctx context.Context, s AtTimeMinute, ev ButtonEvent, now time.Time) (Result, error) {
	if !strings.HasPrefix(ev.CallbackData, CallbackMinutePrefix) {
		return reply(MsgBadKeyboard, ReadyToProcess{}), nil
	}

	minute, ok := parseBounded(strings.TrimPrefix(ev.CallbackData, CallbackMinutePrefix), 59)
	if !ok {
		return reply(MsgBadKeyboard, ReadyToProcess{}), nil
	}

	msgID := ev.MsgID

	return m.minuteNextStage(ctx, s, minute, ev.UID, &msgID, now)
}

func (m *Machine) minuteNextStage(
	ctx context.Context,
	s AtTimeMinute,
	minute int,
	uid int64,
	msgID *int,
	now time.Time,
) (Result, error) {
	if s.PendingText != nil {
		command := momentCommand(s.Year, s.Month, s.Day, s.Hour, minute, *s.PendingText)

		text, ok, err := m.resolve(ctx, uid, command, now)
		if err != nil {
			return Result{}, err
		}

		if !ok {
			m.logger.Error("Не удалось разобрать собранную команду", "uid", uid, "command", command)

			return Result{}, &domainerrors.ErrInternalLogic{Message: "expected time format spec"}
		}

		return reply(text, ReadyToProcess{}), nil
	}

	commands := make([]models.UICommand, 0, 2)
	if msgID != nil {
		commands = append(commands, models.DeleteMessage(*msgID))
	}

	commands = append(commands, models.SendText(MsgExpectText))

	return Result{
		Commands: commands,
		Next: AtTimeText{
			Year:   s.Year,
			Month:  s.Month,
			Day:    s.Day,
			Hour:   s.Hour,
			Minute: minute,
		},
	}, nil
}

func (m *Machine) textProcess(ctx context.Context, s AtTimeText, ev TextEvent, now time.Time) (Result, error) {
	command := momentCommand(s.Year, s.Month, s.Day, s.Hour, s.Minute, ev.Input)

	text, ok, err := m.resolve(ctx, ev.UID, command, now)
	if err != nil {
		return Result{}, err
	}

	if !ok {
		return Result{}, &domainerrors.ErrParse{Input: command, Reason: "expect time spec format"}
	}

	return reply(text, ReadyToProcess{}), nil
}

func (m *Machine) afterProcess(ctx context.Context, s AfterInput, ev TextEvent, now time.Time) (Result, error) {
	command := ev.Input + " " + s.PendingText

	text, ok, err := m.resolve(ctx, ev.UID, command, now)
	if err != nil {
		return Result{}, err
	}

	if !ok {
		return Result{}, &domainerrors.ErrParse{
			Input:  command,
			Reason: "expected duration formatted string, abort operation",
		}
	}

	return reply(fmt.Sprintf("Resulting command:\n%s\n%s", command, text), ReadyToProcess{}), nil
}

func (m *Machine) repDeleteProcess(ctx context.Context, s RepDeleteChoose, ev TextEvent) (Result, error) {
	index, err := strconv.Atoi(strings.TrimSpace(ev.Input))
	if err != nil {
		return reply(MsgNotNumber, ReadyToProcess{}), nil
	}

	if index < 0 || index >= len(s.IDs) {
		return reply(MsgOutOfLimit, ReadyToProcess{}), nil
	}

	if !m.store.DeleteRepeating(ctx, ev.UID, s.IDs[index]) {
		return Result{}, &domainerrors.ErrPersistence{Operation: "delete repeating event"}
	}

	m.logger.Info("Повторяющееся событие удалено", "uid", ev.UID, "templateID", s.IDs[index])

	return reply(MsgDone, ReadyToProcess{}), nil
}

// resolve parses text as a command and stores it. ok is false when the text
// is not a command; err is set when storing failed.
func (m *Machine) resolve(ctx context.Context, uid int64, text string, now time.Time) (string, bool, error) {
	utcOffset, err := m.store.GetUserTimezone(ctx, uid)
	if err != nil {
		return "", false, err
	}

	cmd, err := parser.Parse(text, now, utcOffset)
	if err != nil {
		return "", false, nil
	}

	if !m.store.Put(ctx, uid, cmd, now) {
		return "", false, &domainerrors.ErrPersistence{Operation: "store event"}
	}

	m.logger.Debug("Команда обработана",
		"uid", uid,
		"kind", cmd.Kind.String(),
		"time", cmd.Time,
	)

	return ConfirmationHeader(cmd.Time, now, utcOffset) + "\n" + cmd.Text, true, nil
}

func momentCommand(year int, month time.Month, day, hour, minute int, text string) string {
	return fmt.Sprintf("%d-%d-%d at %d.%d %s", day, int(month), year, hour, minute, text)
}

func parseBounded(input string, maxValue int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 0 || n > maxValue {
		return 0, false
	}

	return n, true
}
