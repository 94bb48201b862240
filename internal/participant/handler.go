// Package participant implements the generic step-handler contract shared by
// every saga participant. A participant plugs its business logic in through
// the Executor interface; the Handler owns the status bookkeeping, the
// history ledger entries and the guarantee that every consumed envelope
// produces exactly one published result, even when the business logic fails
// or panics. Without that guarantee a fault would silently stall the saga
// forever, because the bus has no synchronous reply to time out on.
package participant

import (
	"context"
	"fmt"
	"time"

	"github.com/cassiomorais/order-saga/internal/infrastructure/observability"
	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/rs/zerolog"
)

// EventPublisher publishes an envelope to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, ev *saga.Event) error
}

// Executor is the business logic of one participant.
//
// Forward runs the local forward operation (idempotency check, local record,
// domain validation) and returns a human-readable success message for the
// history ledger. Compensate reverses the local effect; when there is nothing
// to reverse it returns a no-op message and a nil error, so the orchestrator
// can keep unwinding.
type Executor interface {
	Source() string
	Forward(ctx context.Context, ev *saga.Event) (string, error)
	Compensate(ctx context.Context, ev *saga.Event) (string, error)
}

// Config carries the per-participant wiring of a Handler.
type Config struct {
	// ReplyTopic is the orchestrator's inbound topic. Every handled envelope
	// is published there regardless of outcome.
	ReplyTopic string
	// ForwardFailurePrefix prefixes the history message of a failed forward
	// step, e.g. "Fail to realize payment".
	ForwardFailurePrefix string
	// CompensationFailurePrefix prefixes the history message of a failed
	// compensation, e.g. "Rollback not executed for payment".
	CompensationFailurePrefix string
}

// Handler wraps an Executor with the saga step protocol.
type Handler struct {
	exec      Executor
	publisher EventPublisher
	cfg       Config
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// NewHandler creates a Handler for one participant.
func NewHandler(exec Executor, publisher EventPublisher, cfg Config, logger zerolog.Logger, metrics *observability.Metrics) *Handler {
	return &Handler{
		exec:      exec,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger.With().Str("participant", exec.Source()).Logger(),
		metrics:   metrics,
	}
}

// HandleForward executes the forward step. On success the envelope carries
// SUCCESS, on any failure ROLLBACK_PENDING; either way it is published to the
// orchestrator, which is the only place routing decisions are made.
func (h *Handler) HandleForward(ctx context.Context, ev *saga.Event) error {
	source := h.exec.Source()
	message, err := h.execute(ctx, ev, h.exec.Forward)
	now := time.Now()

	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("transaction_id", ev.TransactionID).
			Str("order_id", ev.OrderID).
			Msg("Forward step failed")
		ev.Status = saga.StatusRollbackPending
		ev.Source = source
		ev.AddHistory(source, saga.StatusRollbackPending, fmt.Sprintf("%s: %v", h.cfg.ForwardFailurePrefix, err), now)
		h.metrics.SagaStepsTotal.WithLabelValues(source, "forward", "fail").Inc()
	} else {
		ev.Status = saga.StatusSuccess
		ev.Source = source
		ev.AddHistory(source, saga.StatusSuccess, message, now)
		h.metrics.SagaStepsTotal.WithLabelValues(source, "forward", "success").Inc()
	}

	return h.publisher.Publish(ctx, h.cfg.ReplyTopic, ev)
}

// HandleCompensation reverses the participant's forward effect. The envelope
// always leaves with FAIL: compensation failures are recorded in the history
// but never stop the unwind, the orchestrator's index decrement guarantees
// progress toward the terminal failure state.
func (h *Handler) HandleCompensation(ctx context.Context, ev *saga.Event) error {
	source := h.exec.Source()
	ev.Status = saga.StatusFail
	ev.Source = source

	message, err := h.execute(ctx, ev, h.exec.Compensate)
	now := time.Now()

	if err != nil {
		h.logger.Warn().
			Err(err).
			Str("transaction_id", ev.TransactionID).
			Str("order_id", ev.OrderID).
			Msg("Compensation failed")
		ev.AddHistory(source, saga.StatusFail, fmt.Sprintf("%s: %v", h.cfg.CompensationFailurePrefix, err), now)
		h.metrics.SagaStepsTotal.WithLabelValues(source, "compensation", "fail").Inc()
	} else {
		ev.AddHistory(source, saga.StatusFail, message, now)
		h.metrics.SagaStepsTotal.WithLabelValues(source, "compensation", "success").Inc()
	}

	return h.publisher.Publish(ctx, h.cfg.ReplyTopic, ev)
}

// execute runs one executor operation, converting panics into errors so the
// envelope still gets published.
func (h *Handler) execute(
	ctx context.Context,
	ev *saga.Event,
	op func(ctx context.Context, ev *saga.Event) (string, error),
) (message string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return op(ctx, ev)
}
