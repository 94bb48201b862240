package testutil

import (
	"fmt"
	"time"

	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/google/uuid"
)

// NewTestEvent builds a PENDING envelope with a single order line, as it looks
// right after intake.
func NewTestEvent(source string, status saga.Status) *saga.Event {
	now := time.Now()
	orderID := uuid.New().String()
	transactionID := fmt.Sprintf("%d_%s", now.UnixMilli(), uuid.New())
	return &saga.Event{
		ID:            uuid.New().String(),
		TransactionID: transactionID,
		OrderID:       orderID,
		Payload: saga.OrderPayload{
			ID: orderID,
			Products: []saga.OrderProduct{
				{
					Product:  saga.Product{Code: "COMIC_BOOKS", UnitValue: 1550},
					Quantity: 2,
				},
			},
			TransactionID: transactionID,
			CreatedAt:     now,
		},
		Source:    source,
		Status:    status,
		CreatedAt: now,
	}
}

// NewTestEventWithProducts builds an envelope carrying the given order lines.
func NewTestEventWithProducts(source string, status saga.Status, products []saga.OrderProduct) *saga.Event {
	ev := NewTestEvent(source, status)
	ev.Payload.Products = products
	return ev
}

// MustAmount parses a decimal money string, panicking on bad fixture data.
func MustAmount(s string) saga.Amount {
	a, err := saga.ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}
