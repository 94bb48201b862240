// Package orchestrator is the decision core of the saga. It consumes every
// participant result, asks the router for the next hop, stamps the decision
// into the history ledger and republishes. It executes no business logic of
// its own, so its only failure mode is an unroutable envelope, which goes to
// the dead-letter topic instead of being retried forever.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cassiomorais/order-saga/internal/infrastructure/observability"
	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/rs/zerolog"
)

// EventPublisher publishes an envelope to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, ev *saga.Event) error
}

// Topics is the orchestrator's outbound wiring.
type Topics struct {
	// NotifyEnding receives terminal envelopes for persistence.
	NotifyEnding string
	// DeadLetter receives unroutable envelopes for an operator to inspect.
	DeadLetter string
}

// Service routes envelopes through the saga definition.
type Service struct {
	def       *saga.Definition
	publisher EventPublisher
	topics    Topics
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// NewService creates the orchestrator service.
func NewService(def *saga.Definition, publisher EventPublisher, topics Topics, logger zerolog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		def:       def,
		publisher: publisher,
		topics:    topics,
		logger:    logger,
		metrics:   metrics,
	}
}

// Handle routes one envelope. Every decision is appended to the history with
// source ORCHESTRATOR before publishing, so the ledger alone proves the
// routing path taken.
func (s *Service) Handle(ctx context.Context, ev *saga.Event) error {
	decision, err := saga.Route(s.def, ev, s.topics.NotifyEnding)
	if err != nil {
		var unroutable *saga.UnroutableError
		if errors.As(err, &unroutable) {
			return s.deadLetter(ctx, ev, unroutable)
		}
		return err
	}

	ev.Status = decision.Status
	ev.Source = saga.SourceOrchestrator
	ev.AddHistory(saga.SourceOrchestrator, decision.Status, decision.Message, time.Now())

	s.logger.Info().
		Str("transaction_id", ev.TransactionID).
		Str("order_id", ev.OrderID).
		Str("decision", string(decision.Kind)).
		Str("topic", decision.Topic).
		Msg("Saga routed")

	s.metrics.SagaRoutedTotal.WithLabelValues(string(decision.Kind)).Inc()
	if decision.Terminal {
		s.metrics.SagaFinishedTotal.WithLabelValues(string(decision.Status)).Inc()
	}

	return s.publisher.Publish(ctx, decision.Topic, ev)
}

// deadLetter records the routing failure in the ledger and parks the envelope
// on the operator queue. The error is terminal for this message: retrying an
// unroutable envelope would loop forever.
func (s *Service) deadLetter(ctx context.Context, ev *saga.Event, cause *saga.UnroutableError) error {
	s.logger.Error().
		Str("transaction_id", ev.TransactionID).
		Str("source", cause.Source).
		Str("status", string(cause.Status)).
		Str("reason", cause.Reason).
		Msg("Unroutable event, sending to dead letter topic")

	ev.AddHistory(saga.SourceOrchestrator, ev.Status, "Unroutable event: "+cause.Reason, time.Now())
	s.metrics.UnroutableEvents.Inc()

	return s.publisher.Publish(ctx, s.topics.DeadLetter, ev)
}
