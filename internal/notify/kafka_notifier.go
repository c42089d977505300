package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/central-university-dev/go-remu/internal/common/metrics"
	"github.com/central-university-dev/go-remu/internal/domain/models"
)

const kafkaTransport = "kafka"

// MessageWriter is the part of kafka.Writer the notifier uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaNotifier struct {
	producer MessageWriter
	logger   *slog.Logger
	topic    string
}

func NewKafkaNotifier(brokers []string, topic string, logger *slog.Logger) *KafkaNotifier {
	producer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	return NewKafkaNotifierWithWriter(producer, topic, logger)
}

func NewKafkaNotifierWithWriter(producer MessageWriter, topic string, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		producer: producer,
		logger:   logger,
		topic:    topic,
	}
}

func (n *KafkaNotifier) Notify(ctx context.Context, reminder models.FiredReminder) (err error) {
	defer func() {
		metrics.RecordNotification(kafkaTransport, err)
	}()

	value, err := json.Marshal(NewReminderMessage(reminder))
	if err != nil {
		return fmt.Errorf("ошибка при сериализации напоминания: %w", err)
	}

	err = n.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(reminder.UID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "reminder_id", Value: []byte(reminder.ID)},
		},
		Time: reminder.FiredAt,
	})
	if err != nil {
		n.logger.Error("Ошибка при отправке напоминания в Kafka",
			"error", err,
			"topic", n.topic,
			"reminderID", reminder.ID,
		)

		return fmt.Errorf("ошибка при отправке напоминания в Kafka: %w", err)
	}

	n.logger.Debug("Напоминание опубликовано в Kafka",
		"topic", n.topic,
		"reminderID", reminder.ID,
	)

	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}
