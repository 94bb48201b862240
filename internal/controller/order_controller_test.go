package controller_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cassiomorais/order-saga/internal/controller"
	"github.com/cassiomorais/order-saga/internal/order"
	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/cassiomorais/order-saga/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderService(events *testutil.MockEventRepository, publisher *testutil.MockEventPublisher) *order.Service {
	return order.NewService(testutil.NewMockOrderRepository(), events, publisher, "start-saga", "ORDER_SERVICE", zerolog.Nop())
}

func TestCreateOrder_ReturnsStartingEnvelope(t *testing.T) {
	publisher := testutil.NewMockEventPublisher()
	svc := newOrderService(testutil.NewMockEventRepository(), publisher)
	h := controller.NewOrderController(svc)

	body := `{"products":[{"product":{"code":"BOOKS","unitValue":"15.50"},"quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.CreateOrder(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var ev saga.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
	assert.Equal(t, saga.StatusPending, ev.Status)
	assert.NotEmpty(t, ev.TransactionID)
	require.Len(t, ev.Payload.Products, 1)
	assert.Equal(t, saga.Amount(1550), ev.Payload.Products[0].Product.UnitValue)

	require.NotNil(t, publisher.Last())
	assert.Equal(t, "start-saga", publisher.Last().Topic)
}

func TestCreateOrder_RejectsMalformedBody(t *testing.T) {
	h := controller.NewOrderController(newOrderService(testutil.NewMockEventRepository(), testutil.NewMockEventPublisher()))

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{not json`},
		{"no products", `{"products":[]}`},
		{"zero quantity", `{"products":[{"product":{"code":"BOOKS","unitValue":"15.50"},"quantity":0}]}`},
		{"missing code", `{"products":[{"product":{"unitValue":"15.50"},"quantity":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.CreateOrder(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp controller.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "validation_error", resp.Code)
		})
	}
}

func TestFindByFilters_ByTransactionID(t *testing.T) {
	events := testutil.NewMockEventRepository()
	svc := newOrderService(events, testutil.NewMockEventPublisher())
	h := controller.NewEventController(svc)

	saved := testutil.NewTestEvent("ORDER_SERVICE", saga.StatusSuccess)
	require.NoError(t, events.Save(context.Background(), saved))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/filter?transactionId="+saved.TransactionID, nil)
	rec := httptest.NewRecorder()

	h.FindByFilters(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var ev saga.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
	assert.Equal(t, saved.TransactionID, ev.TransactionID)
}

func TestFindByFilters_MissingFiltersIsBadRequest(t *testing.T) {
	h := controller.NewEventController(newOrderService(testutil.NewMockEventRepository(), testutil.NewMockEventPublisher()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/filter", nil)
	rec := httptest.NewRecorder()

	h.FindByFilters(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFindByFilters_UnknownOrderIsNotFound(t *testing.T) {
	h := controller.NewEventController(newOrderService(testutil.NewMockEventRepository(), testutil.NewMockEventPublisher()))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/filter?orderId=missing", nil)
	rec := httptest.NewRecorder()

	h.FindByFilters(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp controller.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp.Code)
}

func TestListEvents(t *testing.T) {
	events := testutil.NewMockEventRepository()
	svc := newOrderService(events, testutil.NewMockEventPublisher())
	h := controller.NewEventController(svc)

	require.NoError(t, events.Save(context.Background(), testutil.NewTestEvent("ORDER_SERVICE", saga.StatusPending)))
	require.NoError(t, events.Save(context.Background(), testutil.NewTestEvent("ORDER_SERVICE", saga.StatusSuccess)))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	rec := httptest.NewRecorder()

	h.ListEvents(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var list []saga.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}
