package controller

import (
	"net/http"

	"github.com/cassiomorais/order-saga/internal/order"
)

// OrderController handles order intake.
type OrderController struct {
	service *order.Service
}

// NewOrderController creates a new OrderController.
func NewOrderController(service *order.Service) *OrderController {
	return &OrderController{service: service}
}

// CreateOrder accepts an order and starts a saga for it. The response is the
// starting envelope, so the caller immediately has the transaction id to poll
// the audit endpoints with.
func (c *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ev, err := c.service.CreateOrder(r.Context(), req.ToOrderProducts())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ev)
}
