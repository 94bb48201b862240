// Package inventory is the inventory participant: it reserves stock for each
// order line on the forward pass and restores the previous quantities on
// compensation.
package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Inventory is the stock level of one product.
type Inventory struct {
	ID          uuid.UUID
	ProductCode string
	Available   int
	UpdatedAt   time.Time
}

// OrderInventory records one reservation: which order took how much of which
// product, and the stock level before and after. It is both the undo log for
// compensation and the idempotency witness for the (orderId, transactionId)
// pair.
type OrderInventory struct {
	ID            uuid.UUID
	OrderID       string
	TransactionID string
	ProductCode   string
	OrderQuantity int
	OldQuantity   int
	NewQuantity   int
	CreatedAt     time.Time
}

// Repository is the inventory participant's storage port.
type Repository interface {
	FindByProductCode(ctx context.Context, code string) (*Inventory, error)
	UpdateInventory(ctx context.Context, inv *Inventory) error
	SaveOrderInventory(ctx context.Context, oi *OrderInventory) error
	FindOrderInventories(ctx context.Context, orderID, transactionID string) ([]*OrderInventory, error)
	ExistsByOrderIDAndTransactionID(ctx context.Context, orderID, transactionID string) (bool, error)
}
