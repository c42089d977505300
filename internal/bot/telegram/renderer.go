package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/central-university-dev/go-remu/internal/bot/engine"
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

// Renderer turns engine output into Telegram API calls.
type Renderer struct {
	client *Client
	logger *slog.Logger
}

func NewRenderer(client *Client, logger *slog.Logger) *Renderer {
	return &Renderer{
		client: client,
		logger: logger,
	}
}

// Run renders batches until the channel is closed or ctx is done.
func (r *Renderer) Run(ctx context.Context, outbound <-chan engine.Outbound) {
	for {
		select {
		case <-ctx.Done():
			return
		case out, ok := <-outbound:
			if !ok {
				return
			}

			if err := r.Render(out); err != nil {
				r.logger.Error("Ошибка при отображении ответа",
					"error", err,
					"uid", out.UID,
					"chat_id", out.ChatID,
				)
			}
		}
	}
}

// Render executes the batch in order and stops at the first failed call.
func (r *Renderer) Render(out engine.Outbound) error {
	for _, cmd := range out.Commands {
		if err := r.render(out.ChatID, out.ReplyTo, cmd); err != nil {
			return err
		}
	}

	return nil
}

func (r *Renderer) render(chatID int64, replyTo *int, cmd models.UICommand) error {
	switch cmd.Kind {
	case models.UISend:
		return r.client.SendMessage(chatID, cmd.Text, replyTo, nil)
	case models.UIKeyboard:
		keyboard, err := keyboardFor(cmd.Keyboard)
		if err != nil {
			return err
		}

		return r.client.SendMessage(chatID, cmd.Text, nil, &keyboard)
	case models.UICalendar:
		view := cmd.Calendar
		if view == nil {
			return fmt.Errorf("команда календаря без параметров")
		}

		keyboard := CalendarKeyboard(view.Year, view.Month)

		if view.MsgID != nil {
			return r.client.EditMessage(chatID, *view.MsgID, view.Message, keyboard)
		}

		return r.client.SendMessage(chatID, view.Message, nil, &keyboard)
	case models.UIDeleteMessage:
		return r.client.DeleteMessage(chatID, cmd.MsgID)
	case models.UIDeleteKeyboard:
		return r.client.DeleteKeyboard(chatID, cmd.MsgID)
	default:
		return fmt.Errorf("неизвестная команда интерфейса: %s", cmd.Kind)
	}
}
