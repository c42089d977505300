package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
	"github.com/central-university-dev/go-remu/internal/domain/models"
	"github.com/central-university-dev/go-remu/internal/domain/repositories"
)

// ListingLimit caps the active and repeating listings shown to a user.
const ListingLimit = 20

// EventStore keeps users, pending events and repeating templates, and answers
// which events are due and when the next one is.
type EventStore struct {
	users     repositories.UserRepository
	active    repositories.ActiveEventRepository
	templates repositories.TemplateRepository
	txManager repositories.Transactor
	logger    *slog.Logger
}

func NewEventStore(
	users repositories.UserRepository,
	active repositories.ActiveEventRepository,
	templates repositories.TemplateRepository,
	txManager repositories.Transactor,
	logger *slog.Logger,
) *EventStore {
	return &EventStore{
		users:     users,
		active:    active,
		templates: templates,
		txManager: txManager,
		logger:    logger,
	}
}

func (s *EventStore) AddUser(ctx context.Context, user *models.User) error {
	if err := s.users.Save(ctx, user); err != nil {
		s.logger.Error("Ошибка при добавлении пользователя",
			"error", err,
			"uid", user.UID,
		)

		return err
	}

	s.logger.Info("Пользователь зарегистрирован",
		"uid", user.UID,
		"chatID", user.ChatID,
		"utcOffset", user.UTCOffset,
	)

	return nil
}

// Put stores a command for the user. A repeating command stores its template
// and the first occurrence at or after now in one transaction.
func (s *EventStore) Put(ctx context.Context, uid int64, cmd models.Command, now time.Time) bool {
	var err error

	if cmd.IsRepeating() {
		err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			return s.putRepeating(ctx, uid, cmd, now)
		})
	} else {
		err = s.active.Save(ctx, &models.ActiveEvent{
			UID:      uid,
			ParentID: models.NoParent,
			Text:     cmd.Text,
			DueTime:  cmd.Time,
		})
	}

	if err != nil {
		s.logger.Error("Ошибка при сохранении события",
			"error", err,
			"uid", uid,
			"kind", cmd.Kind.String(),
		)

		return false
	}

	return true
}

func (s *EventStore) putRepeating(ctx context.Context, uid int64, cmd models.Command, now time.Time) error {
	template := &models.RepeatingTemplate{
		UID:       uid,
		Text:      cmd.Text,
		StartTime: cmd.Time,
		Interval:  models.ClampInterval(cmd.Interval),
	}

	if err := s.templates.Save(ctx, template); err != nil {
		return err
	}

	return s.active.Save(ctx, &models.ActiveEvent{
		UID:      uid,
		ParentID: template.ID,
		Text:     template.Text,
		DueTime:  template.NextOccurrence(now, false),
	})
}

// ExtractDue removes every event due at now and re-arms repeating ones with
// their next occurrence strictly after now. Results are in due time order.
func (s *EventStore) ExtractDue(ctx context.Context, now time.Time) ([]models.DueReminder, error) {
	var due []models.DueReminder

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		due = due[:0]

		events, err := s.active.FindDue(ctx, now)
		if err != nil {
			return err
		}

		for _, event := range events {
			if err := s.active.Delete(ctx, event.ID); err != nil {
				return err
			}

			due = append(due, models.DueReminder{
				UID:       event.UID,
				Command:   models.NewOneTime(event.DueTime, event.Text),
				Repeating: event.IsRepeating(),
			})

			if !event.IsRepeating() {
				continue
			}

			if err := s.rearm(ctx, event, now); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Error("Ошибка при извлечении наступивших событий",
			"error", err,
			"now", now,
		)

		return nil, &domainerrors.ErrPersistence{Operation: "extract due events"}
	}

	return due, nil
}

func (s *EventStore) rearm(ctx context.Context, event *models.ActiveEvent, now time.Time) error {
	template, err := s.templates.FindByID(ctx, event.ParentID)
	if err != nil {
		var notFound *domainerrors.ErrTemplateNotFound
		if errors.As(err, &notFound) {
			s.logger.Warn("Шаблон повторяющегося события не найден, событие не будет перезапущено",
				"eventID", event.ID,
				"parentID", event.ParentID,
			)

			return nil
		}

		return err
	}

	return s.active.Save(ctx, &models.ActiveEvent{
		UID:      template.UID,
		ParentID: template.ID,
		Text:     template.Text,
		DueTime:  template.NextOccurrence(now, true),
	})
}

// NearestWakeup returns the earliest due time, or nil when nothing is pending.
func (s *EventStore) NearestWakeup(ctx context.Context) (*time.Time, error) {
	nearest, err := s.active.NearestDueTime(ctx)
	if err != nil {
		s.logger.Error("Ошибка при получении ближайшего события", "error", err)
		return nil, err
	}

	return nearest, nil
}

func (s *EventStore) GetAllActive(ctx context.Context, uid int64) ([]*models.ActiveEvent, error) {
	events, err := s.active.FindByUser(ctx, uid, ListingLimit)
	if err != nil {
		s.logger.Error("Ошибка при получении активных событий",
			"error", err,
			"uid", uid,
		)

		return nil, err
	}

	return events, nil
}

func (s *EventStore) GetAllRepeating(ctx context.Context, uid int64) ([]*models.RepeatingTemplate, error) {
	templates, err := s.templates.FindByUser(ctx, uid, ListingLimit)
	if err != nil {
		s.logger.Error("Ошибка при получении повторяющихся событий",
			"error", err,
			"uid", uid,
		)

		return nil, err
	}

	return templates, nil
}

// DeleteRepeating removes the user's template together with its pending event.
// It reports false when the template is missing, belongs to someone else, or
// the deletion failed.
func (s *EventStore) DeleteRepeating(ctx context.Context, uid, id int64) bool {
	deleted := false

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		template, err := s.templates.FindByID(ctx, id)
		if err != nil {
			return err
		}

		if template.UID != uid {
			return &domainerrors.ErrTemplateNotFound{ID: id}
		}

		if err := s.active.DeleteByParent(ctx, id); err != nil {
			return err
		}

		deleted, err = s.templates.Delete(ctx, id)

		return err
	})
	if err != nil {
		s.logger.Error("Ошибка при удалении повторяющегося события",
			"error", err,
			"uid", uid,
			"templateID", id,
		)

		return false
	}

	return deleted
}

func (s *EventStore) GetUser(ctx context.Context, uid int64) (*models.User, error) {
	return s.users.FindByID(ctx, uid)
}

func (s *EventStore) GetUserTimezone(ctx context.Context, uid int64) (int, error) {
	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return 0, err
	}

	return user.UTCOffset, nil
}

func (s *EventStore) GetAllChatIDs(ctx context.Context) ([]int64, error) {
	return s.users.GetAllChatIDs(ctx)
}

func (s *EventStore) GetAllUserIDs(ctx context.Context) ([]int64, error) {
	return s.users.GetAllIDs(ctx)
}
