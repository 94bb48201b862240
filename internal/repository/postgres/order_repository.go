package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cassiomorais/order-saga/internal/order"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository implements order.Repository using PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Save inserts a new order. Order lines are stored as jsonb: they are written
// once at intake and only ever read back whole.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	products, err := json.Marshal(o.Products)
	if err != nil {
		return fmt.Errorf("marshal order products: %w", err)
	}

	_, err = ConnFromCtx(ctx, r.pool).Exec(ctx,
		`INSERT INTO orders (id, products, transaction_id, total_amount, total_items, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		o.ID, products, o.TransactionID, amountToNumericString(o.TotalAmount), o.TotalItems, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}
