package service_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/central-university-dev/go-remu/internal/bot/cache/mocks"
	"github.com/central-university-dev/go-remu/internal/bot/service"
	"github.com/central-university-dev/go-remu/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCachedEventStore_GetAllActive_CacheHit(t *testing.T) {
	store := newTestStore(t)
	listingCache := mocks.NewListingCache(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx := context.Background()

	cached := []*models.ActiveEvent{{ID: 5, UID: testUID, ParentID: models.NoParent, Text: "from cache"}}
	listingCache.On("GetActive", ctx, testUID).Return(cached, nil)

	cachedStore := service.NewCachedEventStore(store.EventStore, listingCache, logger)

	events, err := cachedStore.GetAllActive(ctx, testUID)
	require.NoError(t, err)
	assert.Equal(t, cached, events)
}

func TestCachedEventStore_GetAllActive_CacheMiss(t *testing.T) {
	store := newTestStore(t)
	listingCache := mocks.NewListingCache(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx := context.Background()
	now := time.Unix(10_000, 0).UTC()

	require.True(t, store.Put(ctx, testUID, models.NewOneTime(now.Add(time.Minute), "call"), now))

	listingCache.On("GetActive", ctx, testUID).Return(nil, errors.New("redis down"))
	listingCache.On("SetActive", ctx, testUID, mock.MatchedBy(func(events []*models.ActiveEvent) bool {
		return len(events) == 1 && events[0].Text == "call"
	})).Return(nil)

	cachedStore := service.NewCachedEventStore(store.EventStore, listingCache, logger)

	events, err := cachedStore.GetAllActive(ctx, testUID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "call", events[0].Text)
}

func TestCachedEventStore_InvalidatesOnChange(t *testing.T) {
	store := newTestStore(t)
	listingCache := mocks.NewListingCache(t)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	ctx := context.Background()
	now := time.Unix(10_000, 0).UTC()

	listingCache.On("DeleteActive", ctx, testUID).Return(nil).Times(4)

	cachedStore := service.NewCachedEventStore(store.EventStore, listingCache, logger)

	require.True(t, cachedStore.Put(ctx, testUID, models.NewOneTime(now, "a"), now))
	require.True(t, cachedStore.Put(ctx, testUID, models.NewOneTime(now, "b"), now))
	require.True(t, cachedStore.Put(ctx, testUID, models.NewRepeating(now.Add(time.Hour), time.Hour, "c"), now))

	due, err := cachedStore.ExtractDue(ctx, now)
	require.NoError(t, err)
	assert.Len(t, due, 2)

	templates, err := store.GetAllRepeating(ctx, testUID)
	require.NoError(t, err)
	require.Len(t, templates, 1)

	listingCache.On("DeleteActive", ctx, testUID).Return(errors.New("redis down")).Once()

	assert.True(t, cachedStore.DeleteRepeating(ctx, testUID, templates[0].ID))
}
