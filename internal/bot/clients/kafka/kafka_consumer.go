package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/multierr"

	"github.com/central-university-dev/go-remu/internal/bot/engine"
	"github.com/central-university-dev/go-remu/internal/bot/inbound"
)

// MessageHandler receives decoded control messages.
type MessageHandler interface {
	Send(ctx context.Context, msg engine.Message) error
}

// MessageWriter is the part of kafka.Writer used for the dead letter queue.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader         *kafka.Reader
	dlqWriter      MessageWriter
	messageHandler MessageHandler
	logger         *slog.Logger
	inboundTopic   string
	dlqTopic       string
	defaultOffset  int
}

func NewConsumer(
	brokers []string,
	groupID string,
	inboundTopic string,
	dlqTopic string,
	defaultOffset int,
	messageHandler MessageHandler,
	logger *slog.Logger,
) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          inboundTopic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 1 * time.Second,
		Logger:         kafka.LoggerFunc(logger.Debug),
		ErrorLogger:    kafka.LoggerFunc(logger.Error),
	})

	dlqWriter := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        dlqTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	return newConsumer(reader, dlqWriter, inboundTopic, dlqTopic, defaultOffset, messageHandler, logger)
}

func newConsumer(
	reader *kafka.Reader,
	dlqWriter MessageWriter,
	inboundTopic string,
	dlqTopic string,
	defaultOffset int,
	messageHandler MessageHandler,
	logger *slog.Logger,
) *Consumer {
	return &Consumer{
		reader:         reader,
		dlqWriter:      dlqWriter,
		messageHandler: messageHandler,
		logger:         logger,
		inboundTopic:   inboundTopic,
		dlqTopic:       dlqTopic,
		defaultOffset:  defaultOffset,
	}
}

func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info("Запуск потребления сообщений из Kafka",
		"topic", c.inboundTopic,
	)

	go func() {
		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.logger.Info("Остановка потребления сообщений из Kafka")
					return
				}

				c.logger.Error("Ошибка при чтении сообщения из Kafka",
					"error", err,
				)

				continue
			}

			c.logger.Debug("Получено сообщение из Kafka",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
			)

			if err := c.processMessage(ctx, msg.Value); err != nil {
				c.logger.Error("Ошибка при обработке сообщения",
					"error", err,
				)
			}
		}
	}()
}

func (c *Consumer) processMessage(ctx context.Context, value []byte) error {
	msg, err := inbound.Decode(value, c.defaultOffset)
	if err != nil {
		c.logger.Warn("Некорректное входящее сообщение",
			"error", err,
		)

		if sendErr := c.sendToDLQ(ctx, value, err.Error()); sendErr != nil {
			return multierr.Append(err, sendErr)
		}

		return err
	}

	if err := c.messageHandler.Send(ctx, msg); err != nil {
		return fmt.Errorf("ошибка при передаче сообщения актору: %w", err)
	}

	return nil
}

func (c *Consumer) sendToDLQ(ctx context.Context, message []byte, errMsg string) error {
	c.logger.Info("Отправка сообщения в DLQ",
		"error", errMsg,
		"topic", c.dlqTopic,
	)

	err := c.dlqWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte("error"),
		Value: message,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(errMsg)},
			{Key: "timestamp", Value: []byte(time.Now().Format(time.RFC3339))},
		},
		Time: time.Now(),
	})

	if err != nil {
		c.logger.Error("Ошибка при отправке сообщения в DLQ",
			"error", err,
		)

		return fmt.Errorf("ошибка при отправке сообщения в DLQ: %w", err)
	}

	return nil
}

func (c *Consumer) Close() error {
	var err error

	if c.reader != nil {
		err = multierr.Append(err, c.reader.Close())
	}

	return multierr.Append(err, c.dlqWriter.Close())
}
