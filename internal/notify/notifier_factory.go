package notify

import (
	"log/slog"
	"strings"

	"github.com/central-university-dev/go-remu/internal/common/httputil"
	"github.com/central-university-dev/go-remu/internal/config"
	domainerrors "github.com/central-university-dev/go-remu/internal/domain/errors"
)

type TransportType string

const (
	NoTransport    TransportType = "NONE"
	HTTPTransport  TransportType = "HTTP"
	KafkaTransport TransportType = "KAFKA"
)

type NotifierFactory struct {
	config *config.Config
	logger *slog.Logger
}

func NewNotifierFactory(config *config.Config, logger *slog.Logger) *NotifierFactory {
	return &NotifierFactory{
		config: config,
		logger: logger,
	}
}

// CreateNotifier builds the configured notifier. It returns nil for NONE.
// With fallback enabled the other transport backs up the primary one.
func (f *NotifierFactory) CreateNotifier() (Notifier, error) {
	transport := TransportType(strings.ToUpper(f.config.NotifyTransport))

	f.logger.Info("Создание нотификатора",
		"type", transport,
		"fallback", f.config.FallbackEnabled,
	)

	switch transport {
	case NoTransport, "":
		return nil, nil
	case HTTPTransport:
		primary, err := f.createHTTP()
		if err != nil {
			return nil, err
		}

		if !f.config.FallbackEnabled {
			return primary, nil
		}

		return NewFallbackNotifier(primary, f.createKafka(), f.logger), nil
	case KafkaTransport:
		primary := f.createKafka()

		if !f.config.FallbackEnabled || f.config.NotifyWebhookURL == "" {
			return primary, nil
		}

		secondary, err := f.createHTTP()
		if err != nil {
			return nil, err
		}

		return NewFallbackNotifier(primary, secondary, f.logger), nil
	default:
		return nil, &domainerrors.ErrUnknownNotifier{Transport: string(transport)}
	}
}

func (f *NotifierFactory) createHTTP() (*HTTPNotifier, error) {
	client := httputil.NewResilientClient(httputil.SettingsFromConfig(f.config), f.logger, "reminder_webhook")
	return NewHTTPNotifier(client, f.config.NotifyWebhookURL, f.logger)
}

func (f *NotifierFactory) createKafka() *KafkaNotifier {
	return NewKafkaNotifier(strings.Split(f.config.KafkaBrokers, ","), f.config.TopicFiredReminders, f.logger)
}
