package notify

import (
	"context"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/central-university-dev/go-remu/internal/domain/models"
)

type FallbackNotifier struct {
	primary   Notifier
	secondary Notifier
	logger    *slog.Logger
}

func NewFallbackNotifier(primary, secondary Notifier, logger *slog.Logger) *FallbackNotifier {
	return &FallbackNotifier{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

func (n *FallbackNotifier) Notify(ctx context.Context, reminder models.FiredReminder) error {
	err := n.primary.Notify(ctx, reminder)
	if err == nil {
		return nil
	}

	n.logger.Warn("Основной транспорт недоступен, переключаемся на резервный",
		"primaryError", err,
		"reminderID", reminder.ID,
	)

	fallbackErr := n.secondary.Notify(ctx, reminder)
	if fallbackErr != nil {
		return err
	}

	n.logger.Info("Уведомление успешно отправлено через резервный транспорт",
		"reminderID", reminder.ID,
	)

	return nil
}

func (n *FallbackNotifier) Close() error {
	return multierr.Append(n.primary.Close(), n.secondary.Close())
}
