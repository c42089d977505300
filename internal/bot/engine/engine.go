package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/central-university-dev/go-remu/internal/bot/dialog"
	"github.com/central-university-dev/go-remu/internal/common/metrics"
	domainerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

const tracerName = "github.com/central-university-dev/go-remu/internal/bot/engine"

// ErrorPrefix starts every error reply shown to a user.
const ErrorPrefix = "Error while state machine processing:\n\n"

type Store interface {
	dialog.Store
	AddUser(ctx context.Context, user *models.User) error
	ExtractDue(ctx context.Context, now time.Time) ([]models.DueReminder, error)
	NearestWakeup(ctx context.Context) (*time.Time, error)
	GetUser(ctx context.Context, uid int64) (*models.User, error)
	GetAllUserIDs(ctx context.Context) ([]int64, error)
}

// Outbound is one batch of UI commands for a single chat.
type Outbound struct {
	UID      int64              `json:"uid"`
	ChatID   int64              `json:"chat_id"`
	ReplyTo  *int               `json:"reply_to,omitempty"`
	Commands []models.UICommand `json:"commands"`
}

// Engine routes user input through per-user dialog states and extracts due
// reminders. It is not safe for concurrent use; an Actor owns it.
type Engine struct {
	store         Store
	machine       *dialog.Machine
	states        map[int64]dialog.State
	chats         map[int64]int64
	defaultWakeup time.Duration
	tracer        trace.Tracer
	logger        *slog.Logger
}

func NewEngine(store Store, defaultWakeup time.Duration, logger *slog.Logger) *Engine {
	return &Engine{
		store:         store,
		machine:       dialog.NewMachine(store, logger),
		states:        make(map[int64]dialog.State),
		chats:         make(map[int64]int64),
		defaultWakeup: defaultWakeup,
		tracer:        otel.Tracer(tracerName),
		logger:        logger,
	}
}

// Restore seeds an idle dialog for every user already in the store.
func (e *Engine) Restore(ctx context.Context) error {
	uids, err := e.store.GetAllUserIDs(ctx)
	if err != nil {
		e.logger.Error("Ошибка при восстановлении состояний диалогов", "error", err)
		return err
	}

	for _, uid := range uids {
		if _, ok := e.states[uid]; !ok {
			e.states[uid] = dialog.ReadyToProcess{}
		}
	}

	e.logger.Info("Состояния диалогов восстановлены", "users", len(uids))

	return nil
}

// AddUser registers the user and starts an idle dialog. A user that is
// already stored gets a fresh dialog and the same greeting.
func (e *Engine) AddUser(ctx context.Context, user *models.User) (Outbound, error) {
	ctx, span := e.tracer.Start(ctx, "engine.AddUser", trace.WithAttributes(attribute.Int64("uid", user.UID)))
	defer span.End()

	err := e.store.AddUser(ctx, user)
	if err != nil && !errors.Is(err, &domainerrors.ErrUserAlreadyExists{}) {
		recordError(span, err)
		return Outbound{}, err
	}

	if err != nil {
		e.logger.Info("Пользователь уже зарегистрирован", "uid", user.UID)
	}

	e.states[user.UID] = dialog.ReadyToProcess{}
	e.chats[user.UID] = user.ChatID

	return Outbound{
		UID:      user.UID,
		ChatID:   user.ChatID,
		Commands: []models.UICommand{models.SendText(dialog.MsgGreeting)},
	}, nil
}

func (e *Engine) HandleText(ctx context.Context, msg TextMessage, now time.Time) (Outbound, error) {
	ctx, span := e.tracer.Start(ctx, "engine.HandleText", trace.WithAttributes(attribute.Int64("uid", msg.UID)))
	defer span.End()

	now = storeTime(now)

	e.rememberChat(msg.UID, msg.ChatID)

	state, err := e.state(msg.UID)
	if err != nil {
		metrics.RecordUserMessage("text", err)
		recordError(span, err)

		return Outbound{}, err
	}

	span.SetAttributes(attribute.String("state", state.Name()))

	res, err := e.machine.Process(ctx, state, dialog.TextEvent{UID: msg.UID, MsgID: msg.MsgID, Input: msg.Text}, now)
	metrics.RecordUserMessage("text", err)

	if err != nil {
		e.reset(msg.UID, state, err)
		recordError(span, err)

		return Outbound{}, err
	}

	e.advance(msg.UID, state, res.Next)

	msgID := msg.MsgID

	return e.outbound(ctx, msg.UID, &msgID, res.Commands), nil
}

func (e *Engine) HandleButton(ctx context.Context, msg KeyboardMessage, now time.Time) (Outbound, error) {
	ctx, span := e.tracer.Start(ctx, "engine.HandleButton", trace.WithAttributes(
		attribute.Int64("uid", msg.UID),
		attribute.String("callback", msg.CallbackData),
	))
	defer span.End()

	now = storeTime(now)

	e.rememberChat(msg.UID, msg.ChatID)

	switch msg.CallbackData {
	case dialog.CallbackIgnore:
		return e.outbound(ctx, msg.UID, nil, []models.UICommand{models.DeleteMessage(msg.MsgID)}), nil
	case dialog.CallbackOk:
		return e.outbound(ctx, msg.UID, nil, []models.UICommand{models.DeleteKeyboard(msg.MsgID)}), nil
	}

	state, err := e.state(msg.UID)
	if err != nil {
		metrics.RecordUserMessage("keyboard", err)
		recordError(span, err)

		return Outbound{}, err
	}

	span.SetAttributes(attribute.String("state", state.Name()))

	res, err := e.machine.ProcessKeyboard(ctx, state, dialog.ButtonEvent{
		UID:          msg.UID,
		MsgID:        msg.MsgID,
		CallbackData: msg.CallbackData,
		MsgText:      msg.MsgText,
	}, now)
	metrics.RecordUserMessage("keyboard", err)

	if err != nil {
		e.reset(msg.UID, state, err)
		recordError(span, err)

		return Outbound{}, err
	}

	e.advance(msg.UID, state, res.Next)

	commands := res.Commands
	if !targets(commands, msg.MsgID) {
		commands = append(commands, models.DeleteKeyboard(msg.MsgID))
	}

	return e.outbound(ctx, msg.UID, nil, commands), nil
}

// Tick extracts every reminder due at now. Each one becomes a message with the
// main keyboard and a FiredReminder for external sinks.
func (e *Engine) Tick(ctx context.Context, now time.Time) ([]Outbound, []models.FiredReminder, error) {
	ctx, span := e.tracer.Start(ctx, "engine.Tick")
	defer span.End()

	now = storeTime(now)

	start := time.Now()
	due, err := e.store.ExtractDue(ctx, now)
	metrics.RecordStoreOperation("extract_due", err, time.Since(start))

	if err != nil {
		recordError(span, err)
		return nil, nil, err
	}

	span.SetAttributes(attribute.Int("due", len(due)))

	outbound := make([]Outbound, 0, len(due))
	fired := make([]models.FiredReminder, 0, len(due))

	for _, reminder := range due {
		chatID, err := e.chatFor(ctx, reminder.UID)
		if err != nil {
			e.logger.Error("Не найден чат для напоминания",
				"error", err,
				"uid", reminder.UID,
			)

			continue
		}

		outbound = append(outbound, Outbound{
			UID:      reminder.UID,
			ChatID:   chatID,
			Commands: []models.UICommand{models.ShowKeyboard(models.KeyboardMain, reminder.Command.Text)},
		})

		fired = append(fired, models.FiredReminder{
			ID:        newReminderID(),
			UID:       reminder.UID,
			ChatID:    chatID,
			Text:      reminder.Command.Text,
			DueTime:   reminder.Command.Time,
			FiredAt:   now,
			Repeating: reminder.Repeating,
		})

		metrics.RecordReminderFired(kindOf(reminder), now.Sub(reminder.Command.Time))
	}

	if len(due) > 0 {
		e.logger.Info("Напоминания отправлены", "count", len(outbound))
	}

	return outbound, fired, nil
}

// TimeUntilNextWakeup is the wait until the earliest pending event, never
// negative, or the default wait when nothing is pending.
func (e *Engine) TimeUntilNextWakeup(ctx context.Context, now time.Time) time.Duration {
	nearest, err := e.store.NearestWakeup(ctx)
	if err != nil || nearest == nil {
		return e.defaultWakeup
	}

	wait := nearest.Sub(now)
	if wait < 0 {
		return 0
	}

	return wait
}

// ErrorReply renders a failed step for the user.
func (e *Engine) ErrorReply(uid, chatID int64, replyTo *int, err error) Outbound {
	return Outbound{
		UID:      uid,
		ChatID:   chatID,
		ReplyTo:  replyTo,
		Commands: []models.UICommand{models.SendText(ErrorPrefix + err.Error())},
	}
}

// State returns the user's current dialog state.
func (e *Engine) State(uid int64) (dialog.State, bool) {
	state, ok := e.states[uid]
	return state, ok
}

func (e *Engine) state(uid int64) (dialog.State, error) {
	state, ok := e.states[uid]
	if !ok {
		return nil, &domainerrors.ErrNoDialogState{UID: uid}
	}

	return state, nil
}

func (e *Engine) advance(uid int64, from, to dialog.State) {
	if to == nil {
		return
	}

	if from.Name() != to.Name() {
		metrics.RecordTransition(from.Name(), to.Name())
	}

	e.states[uid] = to
}

func (e *Engine) reset(uid int64, from dialog.State, err error) {
	e.logger.Warn("Ошибка обработки сообщения, диалог сброшен",
		"error", err,
		"uid", uid,
		"state", from.Name(),
	)

	e.advance(uid, from, dialog.ReadyToProcess{})
}

func (e *Engine) rememberChat(uid, chatID int64) {
	if chatID != 0 {
		e.chats[uid] = chatID
	}
}

func (e *Engine) chatFor(ctx context.Context, uid int64) (int64, error) {
	if chatID, ok := e.chats[uid]; ok {
		return chatID, nil
	}

	user, err := e.store.GetUser(ctx, uid)
	if err != nil {
		return 0, err
	}

	e.chats[uid] = user.ChatID

	return user.ChatID, nil
}

func (e *Engine) outbound(ctx context.Context, uid int64, replyTo *int, commands []models.UICommand) Outbound {
	chatID, err := e.chatFor(ctx, uid)
	if err != nil {
		e.logger.Warn("Чат пользователя неизвестен", "uid", uid, "error", err)
	}

	return Outbound{
		UID:      uid,
		ChatID:   chatID,
		ReplyTo:  replyTo,
		Commands: commands,
	}
}

// storeTime drops sub-second precision, which the SQL backends do not keep,
// so every backend schedules and extracts events identically.
func storeTime(now time.Time) time.Time {
	return now.Truncate(time.Second)
}

func targets(commands []models.UICommand, msgID int) bool {
	for _, cmd := range commands {
		if cmd.Targets(msgID) {
			return true
		}
	}

	return false
}

func kindOf(reminder models.DueReminder) string {
	if reminder.Repeating {
		return models.Repeating.String()
	}

	return models.OneTime.String()
}

func newReminderID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
