package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "remu"

	BotSubsystem    = "bot"
	EngineSubsystem = "engine"
	NotifySubsystem = "notify"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Общие метрики для всех сервисов.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)
)

// Бот метрики.
var (
	UserMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "user_messages_total",
			Help:      "Total number of user messages processed",
		},
		[]string{"message_type", "status"},
	)

	DialogTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "dialog_transitions_total",
			Help:      "Total number of dialog state transitions",
		},
		[]string{"from", "to"},
	)
)

// Метрики планировщика напоминаний.
var (
	RemindersFiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "reminders_fired_total",
			Help:      "Total number of reminders delivered",
		},
		[]string{"kind"},
	)

	ReminderDelay = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "reminder_delay_seconds",
			Help:      "Delay between reminder due time and delivery",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
		},
	)

	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "store_operations_total",
			Help:      "Total number of event store operations",
		},
		[]string{"operation", "status"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: EngineSubsystem,
			Name:      "store_operation_duration_seconds",
			Help:      "Event store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Метрики внешних уведомлений.
var (
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: NotifySubsystem,
			Name:      "notifications_total",
			Help:      "Total number of fired reminder notifications",
		},
		[]string{"transport", "status"},
	)
)

func RecordHTTPRequest(service, method, endpoint string, statusCode int, duration time.Duration) {
	status := StatusSuccess
	if statusCode >= 400 {
		status = StatusError
	}

	HTTPRequestsTotal.WithLabelValues(service, method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(service, method, endpoint).Observe(duration.Seconds())
}

func RecordUserMessage(messageType string, err error) {
	UserMessagesTotal.WithLabelValues(messageType, statusOf(err)).Inc()
}

func RecordTransition(from, to string) {
	DialogTransitionsTotal.WithLabelValues(from, to).Inc()
}

func RecordReminderFired(kind string, delay time.Duration) {
	RemindersFiredTotal.WithLabelValues(kind).Inc()

	if delay < 0 {
		delay = 0
	}

	ReminderDelay.Observe(delay.Seconds())
}

func RecordStoreOperation(operation string, err error, duration time.Duration) {
	StoreOperationsTotal.WithLabelValues(operation, statusOf(err)).Inc()
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordNotification(transport string, err error) {
	NotificationsTotal.WithLabelValues(transport, statusOf(err)).Inc()
}

func statusOf(err error) string {
	if err != nil {
		return StatusError
	}

	return StatusSuccess
}
