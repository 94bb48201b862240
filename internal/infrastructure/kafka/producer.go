// Package kafka wraps segmentio/kafka-go for the saga bus.
//
// Every envelope is published with the order id as the message key, so all
// messages of one saga land on the same partition and arrive in publish
// order. The orchestrator's routing correctness relies on this.
package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/cassiomorais/order-saga/pkg/retry"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

// Producer publishes saga envelopes. Writes go through a circuit breaker and
// an exponential-backoff retry; with RequiredAcks=all this gives at-least-once
// delivery, which the participants' idempotency guards absorb.
type Producer struct {
	writer   *kafkago.Writer
	breaker  *gobreaker.CircuitBreaker[struct{}]
	retryCfg retry.Config
	logger   zerolog.Logger
}

// NewProducer creates a producer for the given brokers.
func NewProducer(brokers []string, writeTimeout time.Duration, logger zerolog.Logger) *Producer {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		WriteTimeout: writeTimeout,
		Logger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug().Msgf(msg, args...)
		}),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error().Msgf(msg, args...)
		}),
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "kafka-producer",
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
	})

	return &Producer{
		writer:   writer,
		breaker:  breaker,
		retryCfg: retry.DefaultConfig(),
		logger:   logger,
	}
}

// Publish sends the envelope to the given topic, keyed by the saga's order id.
func (p *Producer) Publish(ctx context.Context, topic string, ev *saga.Event) error {
	value, err := ev.Marshal()
	if err != nil {
		return err
	}

	msg := kafkago.Message{
		Topic: topic,
		Key:   []byte(ev.Key()),
		Value: value,
	}

	err = retry.Do(ctx, p.retryCfg, func() error {
		_, werr := p.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, p.writer.WriteMessages(ctx, msg)
		})
		return werr
	})
	if err != nil {
		return fmt.Errorf("publish event %s to %s: %w", ev.ID, topic, err)
	}

	p.logger.Debug().
		Str("topic", topic).
		Str("transaction_id", ev.TransactionID).
		Str("status", string(ev.Status)).
		Msg("Event published")
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}
	return nil
}
