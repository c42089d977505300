package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/central-university-dev/go-remu/internal/common/metrics"
	domainerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

const httpTransport = "http"

// HTTPNotifier posts fired reminders to a webhook.
type HTTPNotifier struct {
	client     *resty.Client
	webhookURL string
	logger     *slog.Logger
}

func NewHTTPNotifier(client *resty.Client, webhookURL string, logger *slog.Logger) (*HTTPNotifier, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("не задан адрес вебхука для уведомлений")
	}

	return &HTTPNotifier{
		client:     client,
		webhookURL: webhookURL,
		logger:     logger,
	}, nil
}

func (n *HTTPNotifier) Notify(ctx context.Context, reminder models.FiredReminder) (err error) {
	defer func() {
		metrics.RecordNotification(httpTransport, err)
	}()

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Idempotency-Key", reminder.ID).
		SetBody(NewReminderMessage(reminder)).
		Post(n.webhookURL)
	if err != nil {
		n.logger.Error("Ошибка при отправке напоминания на вебхук",
			"error", err,
			"reminderID", reminder.ID,
		)

		return fmt.Errorf("ошибка при отправке напоминания на вебхук: %w", err)
	}

	if resp.IsError() {
		n.logger.Warn("Вебхук отклонил напоминание",
			"status", resp.StatusCode(),
			"reminderID", reminder.ID,
		)

		return &domainerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	return nil
}

func (n *HTTPNotifier) Close() error {
	return nil
}
