package controller

import (
	"net/http"

	"github.com/cassiomorais/order-saga/internal/order"
)

// EventController serves the read-only saga audit API.
type EventController struct {
	service *order.Service
}

// NewEventController creates a new EventController.
func NewEventController(service *order.Service) *EventController {
	return &EventController{service: service}
}

// ListEvents returns every persisted envelope, most recent first.
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.service.FindAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// FindByFilters returns the most recent envelope matching the orderId or
// transactionId query parameter.
func (c *EventController) FindByFilters(w http.ResponseWriter, r *http.Request) {
	filters := order.EventFilters{
		OrderID:       r.URL.Query().Get("orderId"),
		TransactionID: r.URL.Query().Get("transactionId"),
	}

	ev, err := c.service.FindByFilters(r.Context(), filters)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}
