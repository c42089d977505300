package telegram

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/central-university-dev/go-remu/internal/bot/engine"
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

const (
	maxPollTimeout = 60 * time.Second
	retryDelay     = 3 * time.Second
)

// Dispatcher accepts engine messages and knows when the next reminder is due.
type Dispatcher interface {
	Send(ctx context.Context, msg engine.Message) error
	TimeUntilNextWakeup() time.Duration
}

// Limiter throttles users by key.
type Limiter interface {
	Allow(key string) bool
}

// Poller long-polls Telegram and forwards updates to the dispatcher. The poll
// timeout never outlasts the wait until the next reminder.
type Poller struct {
	client        *Client
	dispatcher    Dispatcher
	limiter       Limiter
	defaultOffset int
	offset        int
	logger        *slog.Logger
}

func NewPoller(client *Client, dispatcher Dispatcher, limiter Limiter, defaultOffset int, logger *slog.Logger) *Poller {
	return &Poller{
		client:        client,
		dispatcher:    dispatcher,
		limiter:       limiter,
		defaultOffset: defaultOffset,
		logger:        logger,
	}
}

func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Запуск Telegram поллера")

	for ctx.Err() == nil {
		updates, err := p.client.GetUpdates(p.offset, p.pollTimeout())
		if err != nil {
			p.logger.Error("Ошибка при получении обновлений", "error", err)

			select {
			case <-ctx.Done():
			case <-time.After(retryDelay):
			}

			continue
		}

		for i := range updates {
			p.HandleUpdate(ctx, &updates[i])
			p.offset = updates[i].UpdateID + 1
		}
	}

	p.logger.Info("Telegram поллер остановлен")
}

func (p *Poller) pollTimeout() int {
	wait := min(p.dispatcher.TimeUntilNextWakeup(), maxPollTimeout)

	return max(int(math.Ceil(wait.Seconds())), 1)
}

// HandleUpdate converts one update into an engine message.
func (p *Poller) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		p.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		p.handleCallback(ctx, update.CallbackQuery)
	default:
		p.logger.Warn("Неизвестный тип обновления", "update_id", update.UpdateID)
	}
}

func (p *Poller) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	user := message.From

	p.logger.Debug("Получено сообщение",
		"chat_id", message.Chat.ID,
		"uid", user.ID,
		"username", user.UserName,
	)

	if strings.TrimSpace(message.Text) == string(models.CommandStart) {
		p.dispatch(ctx, user.ID, engine.AddUser{User: models.User{
			UID:       user.ID,
			Username:  user.UserName,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			ChatID:    message.Chat.ID,
			UTCOffset: p.defaultOffset,
		}})

		return
	}

	if !p.allow(user.ID) {
		return
	}

	p.dispatch(ctx, user.ID, engine.TextMessage{
		UID:    user.ID,
		ChatID: message.Chat.ID,
		MsgID:  message.MessageID,
		Text:   message.Text,
	})
}

func (p *Poller) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if err := p.client.AnswerCallback(callback.ID); err != nil {
		p.logger.Warn("Не удалось ответить на нажатие кнопки", "error", err)
	}

	if callback.Message == nil || callback.From == nil {
		p.logger.Warn("Нажатие кнопки без доступного сообщения", "callback_id", callback.ID)
		return
	}

	if !p.allow(callback.From.ID) {
		return
	}

	p.dispatch(ctx, callback.From.ID, engine.KeyboardMessage{
		UID:          callback.From.ID,
		ChatID:       callback.Message.Chat.ID,
		MsgID:        callback.Message.MessageID,
		CallbackData: callback.Data,
		MsgText:      callback.Message.Text,
	})
}

func (p *Poller) allow(uid int64) bool {
	if p.limiter == nil || p.limiter.Allow(strconv.FormatInt(uid, 10)) {
		return true
	}

	p.logger.Warn("Пользователь превысил лимит сообщений", "uid", uid)

	return false
}

func (p *Poller) dispatch(ctx context.Context, uid int64, msg engine.Message) {
	if err := p.dispatcher.Send(ctx, msg); err != nil {
		p.logger.Error("Не удалось передать сообщение в движок",
			"error", err,
			"uid", uid,
		)
	}
}
