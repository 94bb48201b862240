package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/cassiomorais/order-saga/internal/domain/errors"
	"github.com/cassiomorais/order-saga/internal/productvalidation"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ValidationRepository implements productvalidation.Repository using PostgreSQL.
type ValidationRepository struct {
	pool *pgxpool.Pool
}

// NewValidationRepository creates a new ValidationRepository.
func NewValidationRepository(pool *pgxpool.Pool) *ValidationRepository {
	return &ValidationRepository{pool: pool}
}

func (r *ValidationRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Save upserts the validation on (order_id, transaction_id).
func (r *ValidationRepository) Save(ctx context.Context, v *productvalidation.Validation) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO validations (id, order_id, transaction_id, success, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (order_id, transaction_id) DO UPDATE SET
		   success    = EXCLUDED.success,
		   updated_at = EXCLUDED.updated_at`,
		v.ID, v.OrderID, v.TransactionID, v.Success, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyProcessed
		}
		return fmt.Errorf("upsert validation: %w", err)
	}
	return nil
}

// FindByOrderIDAndTransactionID retrieves the validation for one transaction.
func (r *ValidationRepository) FindByOrderIDAndTransactionID(ctx context.Context, orderID, transactionID string) (*productvalidation.Validation, error) {
	v := &productvalidation.Validation{}
	err := r.db(ctx).QueryRow(ctx,
		`SELECT id, order_id, transaction_id, success, created_at, updated_at
		 FROM validations WHERE order_id = $1 AND transaction_id = $2`,
		orderID, transactionID).Scan(&v.ID, &v.OrderID, &v.TransactionID, &v.Success, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrValidationNotFound
		}
		return nil, fmt.Errorf("scan validation: %w", err)
	}
	return v, nil
}

// ExistsByOrderIDAndTransactionID reports whether the transaction was already
// validated.
func (r *ValidationRepository) ExistsByOrderIDAndTransactionID(ctx context.Context, orderID, transactionID string) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM validations WHERE order_id = $1 AND transaction_id = $2)`,
		orderID, transactionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check validation existence: %w", err)
	}
	return exists, nil
}
