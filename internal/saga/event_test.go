package saga_test

import (
	"testing"
	"time"

	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_AddHistoryAppendsInOrder(t *testing.T) {
	ev := &saga.Event{ID: "ev-1", OrderID: "order-1"}
	now := time.Now()

	ev.AddHistory("ORDER_SERVICE", saga.StatusPending, "Saga started", now)
	ev.AddHistory("PAYMENT_SERVICE", saga.StatusSuccess, "Payment realized", now.Add(time.Second))

	require.Len(t, ev.History, 2)
	assert.Equal(t, "ORDER_SERVICE", ev.History[0].Source)
	assert.Equal(t, saga.StatusPending, ev.History[0].Status)
	assert.Equal(t, "PAYMENT_SERVICE", ev.History[1].Source)
	assert.Equal(t, "Payment realized", ev.History[1].Message)
}

func TestEvent_KeyIsOrderID(t *testing.T) {
	ev := &saga.Event{OrderID: "order-1", TransactionID: "tx-1"}
	assert.Equal(t, "order-1", ev.Key())
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	ev := &saga.Event{
		ID:            "ev-1",
		TransactionID: "tx-1",
		OrderID:       "order-1",
		Payload: saga.OrderPayload{
			ID: "order-1",
			Products: []saga.OrderProduct{
				{Product: saga.Product{Code: "BOOKS", UnitValue: 1550}, Quantity: 2},
			},
			TransactionID: "tx-1",
			TotalAmount:   3100,
			TotalItems:    2,
		},
		Source: "PAYMENT_SERVICE",
		Status: saga.StatusSuccess,
	}
	ev.AddHistory("PAYMENT_SERVICE", saga.StatusSuccess, "Payment realized", time.Now())

	data, err := ev.Marshal()
	require.NoError(t, err)

	// Money crosses the wire as a decimal string.
	assert.Contains(t, string(data), `"unitValue":"15.50"`)
	assert.Contains(t, string(data), `"totalAmount":"31.00"`)

	decoded, err := saga.UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, ev.TransactionID, decoded.TransactionID)
	assert.Equal(t, ev.Payload.TotalAmount, decoded.Payload.TotalAmount)
	require.Len(t, decoded.History, 1)
	assert.Equal(t, "Payment realized", decoded.History[0].Message)
}

func TestUnmarshalEvent_Invalid(t *testing.T) {
	_, err := saga.UnmarshalEvent([]byte("{not json"))
	assert.Error(t, err)
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []saga.Status{saga.StatusPending, saga.StatusSuccess, saga.StatusRollbackPending, saga.StatusFail} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, saga.Status("DONE").Valid())
	assert.False(t, saga.Status("").Valid())
}
