package productvalidation

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/cassiomorais/order-saga/internal/domain/errors"
	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service implements participant.Executor for the product validation step.
type Service struct {
	repo     Repository
	products ProductRepository
	source   string
	logger   zerolog.Logger
}

// NewService creates the product validation executor.
func NewService(repo Repository, products ProductRepository, source string, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		products: products,
		source:   source,
		logger:   logger,
	}
}

// Source returns the participant identity written into envelopes.
func (s *Service) Source() string { return s.source }

// Forward validates the order lines against the catalog and records a
// successful validation for the transaction.
func (s *Service) Forward(ctx context.Context, ev *saga.Event) (string, error) {
	if ev.Payload.ID == "" || ev.TransactionID == "" {
		return "", apperrors.NewValidationError("event", "orderId and transactionId must be present")
	}
	if len(ev.Payload.Products) == 0 {
		return "", apperrors.NewValidationError("products", "order has no products")
	}

	exists, err := s.repo.ExistsByOrderIDAndTransactionID(ctx, ev.Payload.ID, ev.TransactionID)
	if err != nil {
		return "", fmt.Errorf("check existing validation: %w", err)
	}
	if exists {
		return "", apperrors.ErrAlreadyProcessed
	}

	for _, line := range ev.Payload.Products {
		if line.Product.Code == "" {
			return "", apperrors.NewValidationError("products", "product code must not be empty")
		}
		if line.Quantity <= 0 {
			return "", apperrors.NewValidationError("products", fmt.Sprintf("invalid quantity for product %s", line.Product.Code))
		}
		known, err := s.products.ExistsByCode(ctx, line.Product.Code)
		if err != nil {
			return "", fmt.Errorf("look up product %s: %w", line.Product.Code, err)
		}
		if !known {
			return "", fmt.Errorf("%w: %s", apperrors.ErrProductNotFound, line.Product.Code)
		}
	}

	now := time.Now()
	v := &Validation{
		ID:            uuid.New(),
		OrderID:       ev.Payload.ID,
		TransactionID: ev.TransactionID,
		Success:       true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Save(ctx, v); err != nil {
		return "", fmt.Errorf("save validation: %w", err)
	}

	s.logger.Info().
		Str("order_id", ev.Payload.ID).
		Str("transaction_id", ev.TransactionID).
		Msg("Products validated")
	return "Products are validated successfully", nil
}

// Compensate flips the validation record to failed. A missing record is a
// recorded no-op so the unwind continues.
func (s *Service) Compensate(ctx context.Context, ev *saga.Event) (string, error) {
	v, err := s.repo.FindByOrderIDAndTransactionID(ctx, ev.Payload.ID, ev.TransactionID)
	if errors.Is(err, apperrors.ErrValidationNotFound) {
		return "No validation found for this transaction, nothing to roll back", nil
	}
	if err != nil {
		return "", fmt.Errorf("load validation: %w", err)
	}

	v.Success = false
	v.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, v); err != nil {
		return "", fmt.Errorf("save validation rollback: %w", err)
	}

	s.logger.Info().
		Str("order_id", ev.Payload.ID).
		Str("transaction_id", ev.TransactionID).
		Msg("Validation rollback executed")
	return "Validation marked as failed", nil
}
