package httputil

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/central-university-dev/go-remu/internal/config"
	domainerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
)

// Settings holds the retry and circuit breaker policy of an outgoing client.
type Settings struct {
	Timeout              time.Duration
	RetryCount           int
	RetryBackoff         time.Duration
	RetryableStatusCodes []int

	CBSlidingWindowSize        int
	CBMinimumRequiredCalls     int
	CBFailureRateThreshold     int
	CBPermittedCallsInHalfOpen int
	CBWaitDurationInOpenState  time.Duration
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Timeout:                    cfg.ExternalRequestTimeout,
		RetryCount:                 cfg.RetryCount,
		RetryBackoff:               cfg.RetryBackoff,
		RetryableStatusCodes:       cfg.RetryableStatusCodes,
		CBSlidingWindowSize:        cfg.CBSlidingWindowSize,
		CBMinimumRequiredCalls:     cfg.CBMinimumRequiredCalls,
		CBFailureRateThreshold:     cfg.CBFailureRateThreshold,
		CBPermittedCallsInHalfOpen: cfg.CBPermittedCallsInHalfOpen,
		CBWaitDurationInOpenState:  cfg.CBWaitDurationInOpenState,
	}
}

// NewResilientClient builds a resty client that retries retryable responses
// and fails fast through a circuit breaker while the remote side is down.
func NewResilientClient(settings Settings, logger *slog.Logger, serviceName string) *resty.Client {
	client := resty.New()

	client.SetTimeout(settings.Timeout)

	client.SetRetryCount(settings.RetryCount)
	client.SetRetryWaitTime(settings.RetryBackoff)
	client.SetRetryMaxWaitTime(settings.RetryBackoff * 5)

	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return !errors.Is(err, gobreaker.ErrOpenState)
		}

		return slices.Contains(settings.RetryableStatusCodes, r.StatusCode())
	})

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        serviceName + "_circuit_breaker",
		MaxRequests: uint32(settings.CBPermittedCallsInHalfOpen), //nolint:gosec // G115: Значение из конфига
		Interval:    time.Duration(settings.CBSlidingWindowSize) * time.Second,
		Timeout:     settings.CBWaitDurationInOpenState,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= uint32(settings.CBMinimumRequiredCalls) && //nolint:gosec // G115: Значение из конфига
				failureRatio >= float64(settings.CBFailureRateThreshold)/100.0
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Состояние circuit breaker изменилось",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	client.SetTransport(&CircuitBreakerTransport{
		breaker:           breaker,
		originalTransport: http.DefaultTransport,
		logger:            logger,
		serviceName:       serviceName,
	})

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		if resp.Request.Attempt > 1 {
			logger.Info("Повторная попытка HTTP запроса",
				"service", serviceName,
				"url", resp.Request.URL,
				"attempt", resp.Request.Attempt,
				"status", resp.StatusCode(),
			)
		}

		return nil
	})

	return client
}

type CircuitBreakerTransport struct {
	breaker           *gobreaker.CircuitBreaker
	originalTransport http.RoundTripper
	logger            *slog.Logger
	serviceName       string
}

func (t *CircuitBreakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	result, err := t.breaker.Execute(func() (interface{}, error) {
		resp, err := t.originalTransport.RoundTrip(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			return nil, &domainerrors.HTTPError{StatusCode: resp.StatusCode}
		}

		return resp, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			t.logger.Warn("Circuit breaker открыт",
				"service", t.serviceName,
				"url", req.URL.String(),
			)
		}

		return nil, err
	}

	return result.(*http.Response), nil
}
