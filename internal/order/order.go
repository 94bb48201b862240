// Package order owns the saga's entry and exit: order intake mints the
// transaction id and publishes the starting envelope; the audit side persists
// terminal envelopes and answers read-only queries over them.
package order

import (
	"context"
	"time"

	"github.com/cassiomorais/order-saga/internal/saga"
)

// Order is the business order being processed. Many transactions may
// reference the same order only when retried under a new transaction id.
type Order struct {
	ID            string
	Products      []saga.OrderProduct
	TransactionID string
	TotalAmount   saga.Amount
	TotalItems    int
	CreatedAt     time.Time
}

// Repository persists orders.
type Repository interface {
	Save(ctx context.Context, o *Order) error
}

// EventRepository persists and queries saga envelopes. The Find methods
// return the most recently created match; absence is ErrEventNotFound.
type EventRepository interface {
	Save(ctx context.Context, ev *saga.Event) error
	FindAll(ctx context.Context) ([]*saga.Event, error)
	FindTopByOrderID(ctx context.Context, orderID string) (*saga.Event, error)
	FindTopByTransactionID(ctx context.Context, transactionID string) (*saga.Event, error)
}

// EventFilters selects an envelope by order id or transaction id. Exactly one
// must be set.
type EventFilters struct {
	OrderID       string
	TransactionID string
}
