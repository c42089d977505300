package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/central-university-dev/go-remu/internal/clock"
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

var ErrActorStopped = errors.New("actor stopped")

const notificationQueueSize = 64

// Notifier delivers fired reminders to an external sink.
type Notifier interface {
	Notify(ctx context.Context, reminder models.FiredReminder) error
}

// Actor serializes every engine call on one goroutine. Inbound messages come
// through Send; UI batches leave through the outbound channel.
type Actor struct {
	engine        *Engine
	clock         clock.Clock
	inbound       chan Message
	outbound      chan<- Outbound
	notifier      Notifier
	notifications chan models.FiredReminder
	done          chan struct{}
	wakeAt        atomic.Int64
	logger        *slog.Logger
}

func NewActor(
	engine *Engine,
	clk clock.Clock,
	queueSize int,
	outbound chan<- Outbound,
	notifier Notifier,
	logger *slog.Logger,
) *Actor {
	return &Actor{
		engine:        engine,
		clock:         clk,
		inbound:       make(chan Message, queueSize),
		outbound:      outbound,
		notifier:      notifier,
		notifications: make(chan models.FiredReminder, notificationQueueSize),
		done:          make(chan struct{}),
		logger:        logger,
	}
}

// Send enqueues a message. It blocks while the queue is full.
func (a *Actor) Send(ctx context.Context, msg Message) error {
	select {
	case <-a.done:
		return ErrActorStopped
	default:
	}

	select {
	case a.inbound <- msg:
		return nil
	case <-a.done:
		return ErrActorStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RequestTick asks for an extra tick without blocking. Requests made while
// one is queued are merged.
func (a *Actor) RequestTick() {
	select {
	case a.inbound <- tick{}:
	default:
	}
}

// Done is closed once Run returns.
func (a *Actor) Done() <-chan struct{} {
	return a.done
}

// Run processes messages until Terminate arrives or ctx is cancelled. Between
// messages it sleeps until the next reminder is due.
func (a *Actor) Run(ctx context.Context) error {
	defer close(a.done)

	notifyCtx, stopNotify := context.WithCancel(context.WithoutCancel(ctx))
	notifyDone := make(chan struct{})

	go a.deliverNotifications(notifyCtx, notifyDone)

	defer func() {
		close(a.notifications)
		<-notifyDone
		stopNotify()
	}()

	a.logger.Info("Актор запущен")

	timer := time.NewTimer(a.arm(ctx))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Актор остановлен по контексту")
			return ctx.Err()
		case <-timer.C:
			if err := a.tick(ctx); err != nil {
				return err
			}
		case msg := <-a.inbound:
			stop, err := a.handle(ctx, msg)
			if err != nil {
				return err
			}

			if stop {
				a.logger.Info("Актор остановлен")
				return nil
			}
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}

		timer.Reset(a.arm(ctx))
	}
}

// Process handles one message on the caller's goroutine and reports whether
// it was Terminate. It must not be used while Run is active.
func (a *Actor) Process(ctx context.Context, msg Message) (bool, error) {
	stop, err := a.handle(ctx, msg)
	a.arm(ctx)

	return stop, err
}

// TimeUntilNextWakeup reports how long the actor will sleep before its next
// tick. Unlike the engine method it may be called from any goroutine.
func (a *Actor) TimeUntilNextWakeup() time.Duration {
	wait := time.Duration(a.wakeAt.Load() - a.clock.Now().UnixNano())
	if wait < 0 {
		return 0
	}

	return wait
}

func (a *Actor) arm(ctx context.Context) time.Duration {
	now := a.clock.Now()
	wait := a.engine.TimeUntilNextWakeup(ctx, now)
	a.wakeAt.Store(now.Add(wait).UnixNano())

	return wait
}

func (a *Actor) handle(ctx context.Context, msg Message) (bool, error) {
	switch m := msg.(type) {
	case AddUser:
		user := m.User

		out, err := a.engine.AddUser(ctx, &user)
		if err != nil {
			return false, a.emit(ctx, a.engine.ErrorReply(user.UID, user.ChatID, nil, err))
		}

		return false, a.emit(ctx, out)
	case TextMessage:
		out, err := a.engine.HandleText(ctx, m, a.clock.Now())
		if err != nil {
			msgID := m.MsgID
			return false, a.emit(ctx, a.engine.ErrorReply(m.UID, m.ChatID, &msgID, err))
		}

		if err := a.emit(ctx, out); err != nil {
			return false, err
		}

		return false, a.tick(ctx)
	case KeyboardMessage:
		out, err := a.engine.HandleButton(ctx, m, a.clock.Now())
		if err != nil {
			return false, a.emit(ctx, a.engine.ErrorReply(m.UID, m.ChatID, nil, err))
		}

		if err := a.emit(ctx, out); err != nil {
			return false, err
		}

		return false, a.tick(ctx)
	case AdvanceTime:
		if mock, ok := a.clock.(*clock.Mock); ok {
			now := mock.Advance(m.By)
			a.logger.Debug("Время сдвинуто", "by", m.By, "now", now)
		} else {
			a.logger.Warn("Сдвиг времени без тестовых часов проигнорирован", "by", m.By)
		}

		return false, a.tick(ctx)
	case tick:
		return false, a.tick(ctx)
	case Terminate:
		return true, nil
	default:
		a.logger.Error("Неизвестное сообщение актора", "message", msg)
		return false, nil
	}
}

func (a *Actor) tick(ctx context.Context) error {
	outbound, fired, err := a.engine.Tick(ctx, a.clock.Now())
	if err != nil {
		a.logger.Error("Ошибка при извлечении напоминаний", "error", err)
		return nil
	}

	for _, out := range outbound {
		if err := a.emit(ctx, out); err != nil {
			return err
		}
	}

	if a.notifier == nil {
		return nil
	}

	for _, reminder := range fired {
		select {
		case a.notifications <- reminder:
		default:
			a.logger.Warn("Очередь уведомлений переполнена, уведомление пропущено",
				"uid", reminder.UID,
				"reminderID", reminder.ID,
			)
		}
	}

	return nil
}

func (a *Actor) emit(ctx context.Context, out Outbound) error {
	if len(out.Commands) == 0 {
		return nil
	}

	select {
	case a.outbound <- out:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Actor) deliverNotifications(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	for reminder := range a.notifications {
		if err := a.notifier.Notify(ctx, reminder); err != nil {
			a.logger.Error("Ошибка при отправке уведомления",
				"error", err,
				"uid", reminder.UID,
				"reminderID", reminder.ID,
			)
		}
	}
}
