package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/central-university-dev/go-remu/internal/domain/models"
)

// ListingCache stores the /list listing of active events per user.
// Get returns nil without error on a miss.
type ListingCache interface {
	GetActive(ctx context.Context, uid int64) ([]*models.ActiveEvent, error)
	SetActive(ctx context.Context, uid int64, events []*models.ActiveEvent) error
	DeleteActive(ctx context.Context, uid int64) error
}

type RedisListingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisListingCache(redisURL, password string, db int, ttl time.Duration, logger *slog.Logger) (*RedisListingCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis успешно установлено")

	return &RedisListingCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}, nil
}

func activeKey(uid int64) string {
	return fmt.Sprintf("remu:active:%d", uid)
}

type cachedEvent struct {
	ID       int64  `json:"id"`
	ParentID int64  `json:"parent_id"`
	Text     string `json:"text"`
	DueTime  int64  `json:"due"`
}

func (c *RedisListingCache) GetActive(ctx context.Context, uid int64) ([]*models.ActiveEvent, error) {
	data, err := c.client.Get(ctx, activeKey(uid)).Bytes()
	if err != nil {
		if err == redis.Nil {
			c.logger.Debug("Кэш не найден", "uid", uid)

			return nil, nil
		}

		c.logger.Error("Ошибка при получении данных из Redis",
			"error", err,
			"uid", uid,
		)

		return nil, fmt.Errorf("ошибка при получении данных из Redis: %w", err)
	}

	var cached []cachedEvent
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Error("Ошибка при десериализации данных из Redis",
			"error", err,
			"uid", uid,
		)

		return nil, fmt.Errorf("ошибка при десериализации данных из Redis: %w", err)
	}

	events := make([]*models.ActiveEvent, 0, len(cached))
	for _, e := range cached {
		events = append(events, &models.ActiveEvent{
			ID:       e.ID,
			UID:      uid,
			ParentID: e.ParentID,
			Text:     e.Text,
			DueTime:  time.Unix(e.DueTime, 0).UTC(),
		})
	}

	c.logger.Debug("Данные успешно получены из кэша",
		"uid", uid,
		"count", len(events),
	)

	return events, nil
}

func (c *RedisListingCache) SetActive(ctx context.Context, uid int64, events []*models.ActiveEvent) error {
	cached := make([]cachedEvent, 0, len(events))
	for _, e := range events {
		cached = append(cached, cachedEvent{
			ID:       e.ID,
			ParentID: e.ParentID,
			Text:     e.Text,
			DueTime:  e.DueTime.Unix(),
		})
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации данных для Redis: %w", err)
	}

	if err := c.client.Set(ctx, activeKey(uid), data, c.ttl).Err(); err != nil {
		c.logger.Error("Ошибка при сохранении данных в Redis",
			"error", err,
			"uid", uid,
		)

		return fmt.Errorf("ошибка при сохранении данных в Redis: %w", err)
	}

	c.logger.Debug("Данные успешно сохранены в кэш",
		"uid", uid,
		"count", len(events),
		"ttl", c.ttl,
	)

	return nil
}

func (c *RedisListingCache) DeleteActive(ctx context.Context, uid int64) error {
	if err := c.client.Del(ctx, activeKey(uid)).Err(); err != nil {
		c.logger.Error("Ошибка при удалении данных из Redis",
			"error", err,
			"uid", uid,
		)

		return fmt.Errorf("ошибка при удалении данных из Redis: %w", err)
	}

	return nil
}

func (c *RedisListingCache) Close() error {
	return c.client.Close()
}
