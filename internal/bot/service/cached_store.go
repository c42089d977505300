package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/central-university-dev/go-remu/internal/bot/cache"
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

// CachedEventStore serves /list listings from the listing cache and drops the
// cached listing whenever a user's active events change.
type CachedEventStore struct {
	*EventStore
	listingCache cache.ListingCache
	logger       *slog.Logger
}

func NewCachedEventStore(store *EventStore, listingCache cache.ListingCache, logger *slog.Logger) *CachedEventStore {
	return &CachedEventStore{
		EventStore:   store,
		listingCache: listingCache,
		logger:       logger,
	}
}

func (s *CachedEventStore) Put(ctx context.Context, uid int64, cmd models.Command, now time.Time) bool {
	ok := s.EventStore.Put(ctx, uid, cmd, now)
	if ok {
		s.invalidate(ctx, uid)
	}

	return ok
}

func (s *CachedEventStore) ExtractDue(ctx context.Context, now time.Time) ([]models.DueReminder, error) {
	due, err := s.EventStore.ExtractDue(ctx, now)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(due))

	for _, reminder := range due {
		if _, ok := seen[reminder.UID]; ok {
			continue
		}

		seen[reminder.UID] = struct{}{}
		s.invalidate(ctx, reminder.UID)
	}

	return due, nil
}

func (s *CachedEventStore) DeleteRepeating(ctx context.Context, uid, id int64) bool {
	ok := s.EventStore.DeleteRepeating(ctx, uid, id)
	if ok {
		s.invalidate(ctx, uid)
	}

	return ok
}

func (s *CachedEventStore) GetAllActive(ctx context.Context, uid int64) ([]*models.ActiveEvent, error) {
	events, err := s.listingCache.GetActive(ctx, uid)
	if err == nil && events != nil {
		s.logger.Debug("Список событий получен из кэша",
			"uid", uid,
			"count", len(events),
		)

		return events, nil
	}

	events, err = s.EventStore.GetAllActive(ctx, uid)
	if err != nil {
		return nil, err
	}

	if err := s.listingCache.SetActive(ctx, uid, events); err != nil {
		s.logger.Error("Ошибка при кэшировании списка событий",
			"error", err,
			"uid", uid,
		)
	}

	return events, nil
}

func (s *CachedEventStore) invalidate(ctx context.Context, uid int64) {
	if err := s.listingCache.DeleteActive(ctx, uid); err != nil {
		s.logger.Error("Ошибка при инвалидации кэша",
			"error", err,
			"uid", uid,
		)
	}
}
