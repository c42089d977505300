package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedLimiter keeps a token bucket per key. Idle buckets are dropped after
// an hour. The HTTP middleware keys by client IP; the chat poller keys by user.
type KeyedLimiter struct {
	clients    map[string]*clientLimiter
	mu         sync.Mutex
	rate       rate.Limit
	burst      int
	expiration time.Duration
}

func NewKeyedLimiter(ctx context.Context, limit rate.Limit, burst int) *KeyedLimiter {
	l := &KeyedLimiter{
		clients:    make(map[string]*clientLimiter),
		rate:       limit,
		burst:      burst,
		expiration: 1 * time.Hour,
	}

	go l.cleanup(ctx)

	return l
}

// Allow reports whether key may make one more request now.
func (l *KeyedLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

func (l *KeyedLimiter) Burst() int {
	return l.burst
}

// RetryAfter is the time one token takes to refill, rounded up to a second.
func (l *KeyedLimiter) RetryAfter() time.Duration {
	if l.rate <= 0 {
		return time.Second
	}

	retryAfter := time.Duration(float64(time.Second) / float64(l.rate))
	if retryAfter < time.Second {
		return time.Second
	}

	return retryAfter.Round(time.Second)
}

func (l *KeyedLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	client, exists := l.clients[key]
	if !exists {
		client = &clientLimiter{
			limiter:  rate.NewLimiter(l.rate, l.burst),
			lastSeen: time.Now(),
		}
		l.clients[key] = client
	} else {
		client.lastSeen = time.Now()
	}

	return client.limiter
}

func (l *KeyedLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			for key, client := range l.clients {
				if time.Since(client.lastSeen) > l.expiration {
					delete(l.clients, key)
				}
			}
			l.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

type RateLimiterMiddleware struct {
	limiter *KeyedLimiter
	logger  *slog.Logger
}

// NewRateLimiterMiddleware allows requestsPerWindow requests per client IP in
// every window, with bursts up to the same number.
func NewRateLimiterMiddleware(
	ctx context.Context,
	requestsPerWindow int,
	window time.Duration,
	logger *slog.Logger,
) *RateLimiterMiddleware {
	limit := rate.Limit(float64(requestsPerWindow) / window.Seconds())

	return &RateLimiterMiddleware{
		limiter: NewKeyedLimiter(ctx, limit, requestsPerWindow),
		logger:  logger,
	}
}

func (m *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !m.limiter.Allow(ip) {
			m.logger.Warn("Превышен лимит запросов", "ip", ip, "path", r.URL.Path)

			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(m.limiter.RetryAfter().Seconds())))
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", m.limiter.Burst()))
			w.Header().Set("X-RateLimit-Remaining", "0")

			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)

			return
		}

		next.ServeHTTP(w, r)
	})
}
