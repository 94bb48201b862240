package inventory

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/cassiomorais/order-saga/internal/domain/errors"
	"github.com/cassiomorais/order-saga/internal/participant"
	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service implements participant.Executor for the inventory step.
type Service struct {
	repo      Repository
	txManager participant.TransactionManager
	source    string
	logger    zerolog.Logger
}

// NewService creates the inventory executor.
func NewService(repo Repository, txManager participant.TransactionManager, source string, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		source:    source,
		logger:    logger,
	}
}

// Source returns the participant identity written into envelopes.
func (s *Service) Source() string { return s.source }

// Forward reserves stock for every order line inside one transaction: the
// reservation record (with the old and new quantity) and the decremented
// stock level commit together or not at all.
func (s *Service) Forward(ctx context.Context, ev *saga.Event) (string, error) {
	exists, err := s.repo.ExistsByOrderIDAndTransactionID(ctx, ev.Payload.ID, ev.TransactionID)
	if err != nil {
		return "", fmt.Errorf("check existing reservation: %w", err)
	}
	if exists {
		return "", apperrors.ErrAlreadyProcessed
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, line := range ev.Payload.Products {
			inv, err := s.repo.FindByProductCode(txCtx, line.Product.Code)
			if err != nil {
				return fmt.Errorf("load inventory for %s: %w", line.Product.Code, err)
			}
			if inv.Available < line.Quantity {
				return fmt.Errorf("%w: product %s has %d available, %d requested",
					apperrors.ErrInsufficientStock, line.Product.Code, inv.Available, line.Quantity)
			}

			now := time.Now()
			oi := &OrderInventory{
				ID:            uuid.New(),
				OrderID:       ev.Payload.ID,
				TransactionID: ev.TransactionID,
				ProductCode:   line.Product.Code,
				OrderQuantity: line.Quantity,
				OldQuantity:   inv.Available,
				NewQuantity:   inv.Available - line.Quantity,
				CreatedAt:     now,
			}
			if err := s.repo.SaveOrderInventory(txCtx, oi); err != nil {
				return fmt.Errorf("save reservation for %s: %w", line.Product.Code, err)
			}

			inv.Available = oi.NewQuantity
			inv.UpdatedAt = now
			if err := s.repo.UpdateInventory(txCtx, inv); err != nil {
				return fmt.Errorf("update inventory for %s: %w", line.Product.Code, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info().
		Str("order_id", ev.Payload.ID).
		Str("transaction_id", ev.TransactionID).
		Msg("Inventory reserved")
	return "Inventory updated successfully", nil
}

// Compensate restores the stock levels recorded in the reservation rows. No
// reservation rows means this participant never committed: a recorded no-op.
func (s *Service) Compensate(ctx context.Context, ev *saga.Event) (string, error) {
	reservations, err := s.repo.FindOrderInventories(ctx, ev.Payload.ID, ev.TransactionID)
	if err != nil {
		return "", fmt.Errorf("load reservations: %w", err)
	}
	if len(reservations) == 0 {
		return "No inventory reservation found for this transaction, nothing to restore", nil
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, oi := range reservations {
			inv, err := s.repo.FindByProductCode(txCtx, oi.ProductCode)
			if err != nil {
				return fmt.Errorf("load inventory for %s: %w", oi.ProductCode, err)
			}
			inv.Available = oi.OldQuantity
			inv.UpdatedAt = time.Now()
			if err := s.repo.UpdateInventory(txCtx, inv); err != nil {
				return fmt.Errorf("restore inventory for %s: %w", oi.ProductCode, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info().
		Str("order_id", ev.Payload.ID).
		Str("transaction_id", ev.TransactionID).
		Msg("Inventory rollback executed")
	return "Inventory restored to previous quantities", nil
}
