package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	domainErrors "github.com/cassiomorais/order-saga/internal/domain/errors"
	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EventRepository implements order.EventRepository using PostgreSQL. Payload
// and history are stored as jsonb: the audit API returns them verbatim, so
// relational decomposition would buy nothing.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Save upserts the envelope by id.
func (r *EventRepository) Save(ctx context.Context, ev *saga.Event) error {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	history, err := json.Marshal(ev.History)
	if err != nil {
		return fmt.Errorf("marshal event history: %w", err)
	}

	_, err = r.db(ctx).Exec(ctx,
		`INSERT INTO events (id, transaction_id, order_id, payload, source, status, history, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET
		   payload    = EXCLUDED.payload,
		   source     = EXCLUDED.source,
		   status     = EXCLUDED.status,
		   history    = EXCLUDED.history,
		   created_at = EXCLUDED.created_at`,
		ev.ID, ev.TransactionID, ev.OrderID, payload, ev.Source, string(ev.Status), history, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert event: %w", err)
	}
	return nil
}

// FindAll retrieves all envelopes, most recent first.
func (r *EventRepository) FindAll(ctx context.Context) ([]*saga.Event, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, transaction_id, order_id, payload, source, status, history, created_at
		 FROM events ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*saga.Event
	for rows.Next() {
		ev, err := r.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// FindTopByOrderID retrieves the most recent envelope for one order.
func (r *EventRepository) FindTopByOrderID(ctx context.Context, orderID string) (*saga.Event, error) {
	return r.scanEvent(r.db(ctx).QueryRow(ctx,
		`SELECT id, transaction_id, order_id, payload, source, status, history, created_at
		 FROM events WHERE order_id = $1
		 ORDER BY created_at DESC LIMIT 1`, orderID))
}

// FindTopByTransactionID retrieves the most recent envelope for one
// transaction.
func (r *EventRepository) FindTopByTransactionID(ctx context.Context, transactionID string) (*saga.Event, error) {
	return r.scanEvent(r.db(ctx).QueryRow(ctx,
		`SELECT id, transaction_id, order_id, payload, source, status, history, created_at
		 FROM events WHERE transaction_id = $1
		 ORDER BY created_at DESC LIMIT 1`, transactionID))
}

func (r *EventRepository) scanEvent(s scanner) (*saga.Event, error) {
	ev := &saga.Event{}
	var (
		payload []byte
		history []byte
		status  string
	)
	err := s.Scan(&ev.ID, &ev.TransactionID, &ev.OrderID, &payload, &ev.Source, &status, &history, &ev.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrEventNotFound
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}

	if err := json.Unmarshal(payload, &ev.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal event payload: %w", err)
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &ev.History); err != nil {
			return nil, fmt.Errorf("unmarshal event history: %w", err)
		}
	}
	ev.Status = saga.Status(status)
	return ev, nil
}
