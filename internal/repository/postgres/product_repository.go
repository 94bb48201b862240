package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRepository implements productvalidation.ProductRepository using
// PostgreSQL. The catalog is read-only at runtime; rows come from migrations.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// ExistsByCode reports whether the product code exists in the catalog.
func (r *ProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := ConnFromCtx(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE code = $1)`,
		code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product existence: %w", err)
	}
	return exists, nil
}
