package postgres

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/cassiomorais/order-saga/internal/domain/errors"
	"github.com/cassiomorais/order-saga/internal/payment"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository implements payment.Repository using PostgreSQL.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Save upserts the payment on (order_id, transaction_id). The unique index on
// that pair is what makes duplicate deliveries collapse into one row.
func (r *PaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payments
		 (id, order_id, transaction_id, total_amount, total_items, status, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (order_id, transaction_id) DO UPDATE SET
		   total_amount = EXCLUDED.total_amount,
		   total_items  = EXCLUDED.total_items,
		   status       = EXCLUDED.status,
		   updated_at   = EXCLUDED.updated_at`,
		p.ID, p.OrderID, p.TransactionID, amountToNumericString(p.TotalAmount),
		p.TotalItems, string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyProcessed
		}
		return fmt.Errorf("upsert payment: %w", err)
	}
	return nil
}

// FindByOrderIDAndTransactionID retrieves the payment for one transaction.
func (r *PaymentRepository) FindByOrderIDAndTransactionID(ctx context.Context, orderID, transactionID string) (*payment.Payment, error) {
	return r.scanPayment(r.db(ctx).QueryRow(ctx,
		`SELECT id, order_id, transaction_id, total_amount, total_items, status, created_at, updated_at
		 FROM payments WHERE order_id = $1 AND transaction_id = $2`,
		orderID, transactionID))
}

// ExistsByOrderIDAndTransactionID reports whether the transaction was already
// processed by this participant.
func (r *PaymentRepository) ExistsByOrderIDAndTransactionID(ctx context.Context, orderID, transactionID string) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE order_id = $1 AND transaction_id = $2)`,
		orderID, transactionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check payment existence: %w", err)
	}
	return exists, nil
}

func (r *PaymentRepository) scanPayment(s scanner) (*payment.Payment, error) {
	p := &payment.Payment{}
	var (
		amountStr string
		status    string
	)
	err := s.Scan(
		&p.ID, &p.OrderID, &p.TransactionID, &amountStr, &p.TotalItems,
		&status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	amount, err := numericStringToAmount(amountStr)
	if err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	p.TotalAmount = amount
	p.Status = payment.Status(status)
	return p, nil
}
