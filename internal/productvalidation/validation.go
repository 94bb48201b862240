// Package productvalidation is the first saga participant: it checks that the
// order references only products that exist in the catalog.
package productvalidation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Validation is the participant's local record for one transaction.
type Validation struct {
	ID            uuid.UUID
	OrderID       string
	TransactionID string
	Success       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Repository is the validation participant's storage port.
type Repository interface {
	Save(ctx context.Context, v *Validation) error
	FindByOrderIDAndTransactionID(ctx context.Context, orderID, transactionID string) (*Validation, error)
	ExistsByOrderIDAndTransactionID(ctx context.Context, orderID, transactionID string) (bool, error)
}

// ProductRepository is the read-only catalog lookup.
type ProductRepository interface {
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
