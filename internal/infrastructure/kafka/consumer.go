package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
)

// EventHandler processes one decoded envelope. Returning an error leaves the
// offset uncommitted so the message is redelivered.
type EventHandler func(ctx context.Context, ev *saga.Event) error

// Consumer reads saga envelopes from one topic within a consumer group.
type Consumer struct {
	reader *kafkago.Reader
	topic  string
	logger zerolog.Logger
}

// NewConsumer creates a consumer for topic in the given group.
func NewConsumer(brokers []string, groupID, topic string, logger zerolog.Logger) *Consumer {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          1,
		MaxBytes:          10e6,
		HeartbeatInterval: 3 * time.Second,
		CommitInterval:    0, // synchronous commits, one message at a time
		Logger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug().Msgf(msg, args...)
		}),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error().Msgf(msg, args...)
		}),
	})

	return &Consumer{
		reader: reader,
		topic:  topic,
		logger: logger.With().Str("topic", topic).Logger(),
	}
}

// Topic returns the topic this consumer reads.
func (c *Consumer) Topic() string { return c.topic }

// Run fetches messages until ctx is cancelled. A message that cannot be
// decoded is logged and committed since redelivering malformed bytes can
// never succeed. A handler error leaves the offset in place for redelivery.
func (c *Consumer) Run(ctx context.Context, handler EventHandler) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			c.logger.Error().Err(err).Msg("Failed to fetch message")
			time.Sleep(time.Second)
			continue
		}

		ev, err := saga.UnmarshalEvent(msg.Value)
		if err != nil {
			c.logger.Error().
				Err(err).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("Discarding undecodable message")
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				return fmt.Errorf("commit offset: %w", err)
			}
			continue
		}

		if err := handler(ctx, ev); err != nil {
			c.logger.Error().
				Err(err).
				Str("transaction_id", ev.TransactionID).
				Int64("offset", msg.Offset).
				Msg("Handler failed, offset not committed")
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to commit offset")
		}
	}
}
