// Package saga holds the wire contract of the order saga: the event envelope
// exchanged on the bus, its append-only history ledger, the static definition
// table of participants and the routing decision logic.
//
// Everything here is pure data and pure decisions. Transport, persistence and
// participant business logic live elsewhere and depend on this package, never
// the other way around.
package saga

import (
	"encoding/json"
	"fmt"
	"time"
)

// SourceOrchestrator is the source identity the orchestrator writes into
// history entries. Participant source names are configuration.
const SourceOrchestrator = "ORCHESTRATOR"

// Product is a catalog item referenced by an order line.
type Product struct {
	Code      string `json:"code"`
	UnitValue Amount `json:"unitValue"`
}

// OrderProduct is one order line: a product and a quantity.
type OrderProduct struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// OrderPayload is the order snapshot carried inside the envelope. Participants
// mutate it additively (payment fills in the computed totals) but never
// replace fields committed by an earlier step.
type OrderPayload struct {
	ID            string         `json:"id"`
	Products      []OrderProduct `json:"products"`
	TransactionID string         `json:"transactionId"`
	TotalAmount   Amount         `json:"totalAmount"`
	TotalItems    int            `json:"totalItems"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// HistoryEntry is one immutable line of the audit ledger.
type HistoryEntry struct {
	Source    string    `json:"source"`
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Event is the envelope exchanged between all services. It is mutated by
// exactly one component at a time: read from the bus, appended to, published
// back. TransactionID is stable for the whole saga and doubles as the
// idempotency and ordering key.
type Event struct {
	ID            string         `json:"id"`
	TransactionID string         `json:"transactionId"`
	OrderID       string         `json:"orderId"`
	Payload       OrderPayload   `json:"payload"`
	Source        string         `json:"source"`
	Status        Status         `json:"status"`
	History       []HistoryEntry `json:"history"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// AddHistory appends one entry to the ledger. The ledger only ever grows;
// nothing in this codebase removes or rewrites entries.
func (e *Event) AddHistory(source string, status Status, message string, at time.Time) {
	e.History = append(e.History, HistoryEntry{
		Source:    source,
		Status:    status,
		Message:   message,
		CreatedAt: at,
	})
}

// Key is the bus partition key. All messages of one saga share it so the bus
// delivers them in publish order to a single consumer.
func (e *Event) Key() string {
	return e.OrderID
}

// Marshal encodes the envelope for the bus.
func (e *Event) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", e.ID, err)
	}
	return data, nil
}

// UnmarshalEvent decodes an envelope received from the bus.
func UnmarshalEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &ev, nil
}
