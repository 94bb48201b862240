package controller

import (
	"github.com/cassiomorais/order-saga/internal/saga"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (decimal strings for money, validation
// tags). Controllers convert these to domain types before calling services.

// ProductRequest is one catalog item reference in an order request.
type ProductRequest struct {
	Code      string      `json:"code" validate:"required"`
	UnitValue saga.Amount `json:"unitValue" validate:"required,gt=0"`
}

// OrderProductRequest is one order line in an order request.
type OrderProductRequest struct {
	Product  ProductRequest `json:"product" validate:"required"`
	Quantity int            `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest holds the input for starting a saga.
type CreateOrderRequest struct {
	Products []OrderProductRequest `json:"products" validate:"required,min=1,dive"`
}

// ToOrderProducts converts the request lines to domain order lines.
func (r *CreateOrderRequest) ToOrderProducts() []saga.OrderProduct {
	products := make([]saga.OrderProduct, 0, len(r.Products))
	for _, line := range r.Products {
		products = append(products, saga.OrderProduct{
			Product: saga.Product{
				Code:      line.Product.Code,
				UnitValue: line.Product.UnitValue,
			},
			Quantity: line.Quantity,
		})
	}
	return products
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
