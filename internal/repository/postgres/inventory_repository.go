package postgres

import (
	"context"
	"fmt"

	domainErrors "github.com/cassiomorais/order-saga/internal/domain/errors"
	"github.com/cassiomorais/order-saga/internal/inventory"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InventoryRepository implements inventory.Repository using PostgreSQL.
type InventoryRepository struct {
	pool *pgxpool.Pool
}

// NewInventoryRepository creates a new InventoryRepository.
func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

func (r *InventoryRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// FindByProductCode retrieves the stock row for one product. Inside a
// transaction the row is locked so concurrent reservations serialize.
func (r *InventoryRepository) FindByProductCode(ctx context.Context, code string) (*inventory.Inventory, error) {
	inv := &inventory.Inventory{}
	err := r.db(ctx).QueryRow(ctx,
		`SELECT id, product_code, available, updated_at
		 FROM inventories WHERE product_code = $1
		 FOR UPDATE`,
		code).Scan(&inv.ID, &inv.ProductCode, &inv.Available, &inv.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", domainErrors.ErrInventoryNotFound, code)
		}
		return nil, fmt.Errorf("find inventory: %w", err)
	}
	return inv, nil
}

// UpdateInventory writes the new stock level for one product.
func (r *InventoryRepository) UpdateInventory(ctx context.Context, inv *inventory.Inventory) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE inventories SET available = $1, updated_at = $2 WHERE id = $3`,
		inv.Available, inv.UpdatedAt, inv.ID,
	)
	if err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domainErrors.ErrInventoryNotFound, inv.ProductCode)
	}
	return nil
}

// SaveOrderInventory records one reservation line.
func (r *InventoryRepository) SaveOrderInventory(ctx context.Context, oi *inventory.OrderInventory) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO order_inventories
		 (id, order_id, transaction_id, product_code, order_quantity, old_quantity, new_quantity, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		oi.ID, oi.OrderID, oi.TransactionID, oi.ProductCode,
		oi.OrderQuantity, oi.OldQuantity, oi.NewQuantity, oi.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order inventory: %w", err)
	}
	return nil
}

// FindOrderInventories retrieves all reservation lines of one transaction.
func (r *InventoryRepository) FindOrderInventories(ctx context.Context, orderID, transactionID string) ([]*inventory.OrderInventory, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, order_id, transaction_id, product_code, order_quantity, old_quantity, new_quantity, created_at
		 FROM order_inventories WHERE order_id = $1 AND transaction_id = $2
		 ORDER BY created_at ASC`,
		orderID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list order inventories: %w", err)
	}
	defer rows.Close()

	var result []*inventory.OrderInventory
	for rows.Next() {
		oi := &inventory.OrderInventory{}
		if err := rows.Scan(&oi.ID, &oi.OrderID, &oi.TransactionID, &oi.ProductCode,
			&oi.OrderQuantity, &oi.OldQuantity, &oi.NewQuantity, &oi.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order inventory: %w", err)
		}
		result = append(result, oi)
	}
	return result, rows.Err()
}

// ExistsByOrderIDAndTransactionID reports whether the transaction already
// reserved stock.
func (r *InventoryRepository) ExistsByOrderIDAndTransactionID(ctx context.Context, orderID, transactionID string) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM order_inventories WHERE order_id = $1 AND transaction_id = $2)`,
		orderID, transactionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check order inventory existence: %w", err)
	}
	return exists, nil
}
