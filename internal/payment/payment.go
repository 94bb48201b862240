// Package payment is the payment participant: it computes and validates the
// order totals on the forward pass and refunds on compensation.
package payment

import (
	"context"
	"time"

	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/google/uuid"
)

// Status is the payment's local status, distinct from the saga status.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusRefund  Status = "REFUND"
)

// Payment is the participant's local record, keyed by (orderId,
// transactionId). It is created on the first forward pass, updated in place
// on compensation and never deleted: the row is the durable idempotency
// witness against duplicate delivery.
type Payment struct {
	ID            uuid.UUID
	OrderID       string
	TransactionID string
	TotalAmount   saga.Amount
	TotalItems    int
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Repository is the payment participant's storage port. Save upserts on
// (orderId, transactionId); the backing store enforces uniqueness on that
// pair.
type Repository interface {
	Save(ctx context.Context, p *Payment) error
	FindByOrderIDAndTransactionID(ctx context.Context, orderID, transactionID string) (*Payment, error)
	ExistsByOrderIDAndTransactionID(ctx context.Context, orderID, transactionID string) (bool, error)
}
