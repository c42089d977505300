package middleware_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/central-university-dev/go-remu/internal/common/middleware"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestKeyedLimiter_SeparateBuckets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewKeyedLimiter(ctx, rate.Every(time.Hour), 2)

	assert.True(t, limiter.Allow("1"))
	assert.True(t, limiter.Allow("1"))
	assert.False(t, limiter.Allow("1"))

	assert.True(t, limiter.Allow("2"), "другой ключ имеет собственный лимит")
	assert.Equal(t, time.Hour, limiter.RetryAfter())
}

func TestRateLimiterMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiterMiddleware(ctx, 3, time.Minute, testLogger())

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	request := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/inbound", http.NoBody)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		return rec
	}

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusAccepted, request("10.0.0.1:5000").Code)
	}

	limited := request("10.0.0.1:5001")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "20", limited.Header().Get("Retry-After"))
	assert.Equal(t, "3", limited.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", limited.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusAccepted, request("10.0.0.2:5000").Code)
}

func TestMetricsMiddleware_PassesStatus(t *testing.T) {
	handler := middleware.NewMetricsMiddleware("bot").Middleware(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
