package order

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/cassiomorais/order-saga/internal/domain/errors"
	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventPublisher publishes an envelope to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, ev *saga.Event) error
}

// Service is the order intake and audit query service.
type Service struct {
	orders     Repository
	events     EventRepository
	publisher  EventPublisher
	startTopic string
	source     string
	logger     zerolog.Logger
}

// NewService creates the order service. source is the identity written into
// the starting envelope.
func NewService(orders Repository, events EventRepository, publisher EventPublisher, startTopic, source string, logger zerolog.Logger) *Service {
	return &Service{
		orders:     orders,
		events:     events,
		publisher:  publisher,
		startTopic: startTopic,
		source:     source,
		logger:     logger,
	}
}

// CreateOrder persists the order, mints the saga's transaction id, persists
// the initial PENDING envelope and publishes it to the start topic. The
// transaction id embeds the creation time for operator-friendly grepping.
func (s *Service) CreateOrder(ctx context.Context, products []saga.OrderProduct) (*saga.Event, error) {
	now := time.Now()
	o := &Order{
		ID:            uuid.New().String(),
		Products:      products,
		TransactionID: fmt.Sprintf("%d_%s", now.UnixMilli(), uuid.New()),
		CreatedAt:     now,
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	ev := &saga.Event{
		ID:            uuid.New().String(),
		TransactionID: o.TransactionID,
		OrderID:       o.ID,
		Payload: saga.OrderPayload{
			ID:            o.ID,
			Products:      o.Products,
			TransactionID: o.TransactionID,
			CreatedAt:     o.CreatedAt,
		},
		Source:    s.source,
		Status:    saga.StatusPending,
		CreatedAt: now,
	}
	if err := s.events.Save(ctx, ev); err != nil {
		return nil, fmt.Errorf("save initial event: %w", err)
	}
	if err := s.publisher.Publish(ctx, s.startTopic, ev); err != nil {
		return nil, fmt.Errorf("publish start event: %w", err)
	}

	s.logger.Info().
		Str("order_id", o.ID).
		Str("transaction_id", o.TransactionID).
		Msg("Order created, saga started")
	return ev, nil
}

// NotifyEnding persists a terminal envelope received from the orchestrator.
func (s *Service) NotifyEnding(ctx context.Context, ev *saga.Event) error {
	ev.CreatedAt = time.Now()
	if err := s.events.Save(ctx, ev); err != nil {
		return fmt.Errorf("save terminal event: %w", err)
	}

	s.logger.Info().
		Str("order_id", ev.OrderID).
		Str("transaction_id", ev.TransactionID).
		Str("status", string(ev.Status)).
		Msg("Saga ending notified")
	return nil
}

// FindAll returns all persisted envelopes, most recent first.
func (s *Service) FindAll(ctx context.Context) ([]*saga.Event, error) {
	return s.events.FindAll(ctx)
}

// FindByFilters returns the most recent envelope matching the given filter.
// Exactly one of orderId and transactionId must be provided.
func (s *Service) FindByFilters(ctx context.Context, filters EventFilters) (*saga.Event, error) {
	if filters.OrderID == "" && filters.TransactionID == "" {
		return nil, apperrors.NewValidationError("filters", "orderId or transactionId must be informed")
	}
	if filters.OrderID != "" && filters.TransactionID != "" {
		return nil, apperrors.NewValidationError("filters", "only one of orderId and transactionId may be informed")
	}

	if filters.OrderID != "" {
		return s.events.FindTopByOrderID(ctx, filters.OrderID)
	}
	return s.events.FindTopByTransactionID(ctx, filters.TransactionID)
}
