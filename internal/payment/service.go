package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/cassiomorais/order-saga/internal/domain/errors"
	"github.com/cassiomorais/order-saga/internal/participant"
	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service implements participant.Executor for the payment step.
type Service struct {
	repo      Repository
	txManager participant.TransactionManager
	source    string
	minAmount saga.Amount
	logger    zerolog.Logger
}

// NewService creates the payment executor. source and minAmount are explicit
// configuration so the service is testable in isolation.
func NewService(repo Repository, txManager participant.TransactionManager, source string, minAmount saga.Amount, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		source:    source,
		minAmount: minAmount,
		logger:    logger,
	}
}

// Source returns the participant identity written into envelopes.
func (s *Service) Source() string { return s.source }

// Forward realizes the payment: it rejects duplicate deliveries, computes the
// order totals, annotates the payload with them, and validates the amount
// floor. The pending record is written before validation, so a floor failure
// leaves a PENDING row for the audit trail; it never becomes SUCCESS.
func (s *Service) Forward(ctx context.Context, ev *saga.Event) (string, error) {
	exists, err := s.repo.ExistsByOrderIDAndTransactionID(ctx, ev.Payload.ID, ev.TransactionID)
	if err != nil {
		return "", fmt.Errorf("check existing payment: %w", err)
	}
	if exists {
		return "", apperrors.ErrAlreadyProcessed
	}

	totalAmount, totalItems := calculateTotals(ev.Payload.Products)

	now := time.Now()
	p := &Payment{
		ID:            uuid.New(),
		OrderID:       ev.Payload.ID,
		TransactionID: ev.TransactionID,
		TotalAmount:   totalAmount,
		TotalItems:    totalItems,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return "", fmt.Errorf("save pending payment: %w", err)
	}

	ev.Payload.TotalAmount = totalAmount
	ev.Payload.TotalItems = totalItems

	if totalAmount < s.minAmount {
		return "", fmt.Errorf("%w: the minimum amount is %s", apperrors.ErrAmountBelowMinimum, s.minAmount)
	}

	p.Status = StatusSuccess
	p.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, p); err != nil {
		return "", fmt.Errorf("commit payment: %w", err)
	}

	s.logger.Info().
		Str("order_id", p.OrderID).
		Str("transaction_id", p.TransactionID).
		Str("total_amount", totalAmount.String()).
		Msg("Payment realized")
	return fmt.Sprintf("Payment realized successfully, amount %s for %d items", totalAmount, totalItems), nil
}

// Compensate refunds the payment. A missing record means this participant
// never committed; that is a recorded no-op, not a failure, so the
// orchestrator can keep unwinding.
func (s *Service) Compensate(ctx context.Context, ev *saga.Event) (string, error) {
	var message string
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		p, err := s.repo.FindByOrderIDAndTransactionID(txCtx, ev.Payload.ID, ev.TransactionID)
		if errors.Is(err, apperrors.ErrPaymentNotFound) {
			message = "No payment found for this transaction, nothing to refund"
			return nil
		}
		if err != nil {
			return fmt.Errorf("load payment: %w", err)
		}

		p.Status = StatusRefund
		p.UpdatedAt = time.Now()
		if err := s.repo.Save(txCtx, p); err != nil {
			return fmt.Errorf("save refund: %w", err)
		}

		ev.Payload.TotalAmount = p.TotalAmount
		ev.Payload.TotalItems = p.TotalItems
		message = fmt.Sprintf("Payment of %s refunded", p.TotalAmount)
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info().
		Str("order_id", ev.Payload.ID).
		Str("transaction_id", ev.TransactionID).
		Msg("Payment compensation executed")
	return message, nil
}

func calculateTotals(products []saga.OrderProduct) (saga.Amount, int) {
	var amount saga.Amount
	var items int
	for _, line := range products {
		amount += line.Product.UnitValue * saga.Amount(line.Quantity)
		items += line.Quantity
	}
	return amount, items
}
