package testutil

import (
	"context"
	"sync"

	domainErrors "github.com/cassiomorais/order-saga/internal/domain/errors"
	"github.com/cassiomorais/order-saga/internal/inventory"
	"github.com/cassiomorais/order-saga/internal/order"
	"github.com/cassiomorais/order-saga/internal/payment"
	"github.com/cassiomorais/order-saga/internal/productvalidation"
	"github.com/cassiomorais/order-saga/internal/saga"
)

// --- Event Publisher Mock ---

// PublishedEvent is one recorded publish call.
type PublishedEvent struct {
	Topic string
	Event *saga.Event
}

// MockEventPublisher records published envelopes. Events are deep-copied at
// publish time so later mutations by the caller do not rewrite what a test
// already observed.
type MockEventPublisher struct {
	mu        sync.Mutex
	Published []PublishedEvent

	PublishFunc func(ctx context.Context, topic string, ev *saga.Event) error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(ctx context.Context, topic string, ev *saga.Event) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, ev)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, PublishedEvent{Topic: topic, Event: copyEvent(ev)})
	return nil
}

// Last returns the most recently published event, or nil.
func (m *MockEventPublisher) Last() *PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Published) == 0 {
		return nil
	}
	return &m.Published[len(m.Published)-1]
}

func copyEvent(ev *saga.Event) *saga.Event {
	cp := *ev
	cp.History = append([]saga.HistoryEntry(nil), ev.History...)
	cp.Payload.Products = append([]saga.OrderProduct(nil), ev.Payload.Products...)
	return &cp
}

// --- Payment Repository Mock ---

type paymentKey struct{ orderID, transactionID string }

// MockPaymentRepository is a mock implementation of payment.Repository.
type MockPaymentRepository struct {
	mu       sync.Mutex
	payments map[paymentKey]*payment.Payment

	SaveFunc func(ctx context.Context, p *payment.Payment) error
	FindFunc func(ctx context.Context, orderID, transactionID string) (*payment.Payment, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[paymentKey]*payment.Payment)}
}

func (m *MockPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.payments[paymentKey{p.OrderID, p.TransactionID}] = &cp
	return nil
}

func (m *MockPaymentRepository) FindByOrderIDAndTransactionID(ctx context.Context, orderID, transactionID string) (*payment.Payment, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, orderID, transactionID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentKey{orderID, transactionID}]
	if !ok {
		return nil, domainErrors.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPaymentRepository) ExistsByOrderIDAndTransactionID(ctx context.Context, orderID, transactionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.payments[paymentKey{orderID, transactionID}]
	return ok, nil
}

// Get returns the stored payment (test helper, no context needed).
func (m *MockPaymentRepository) Get(orderID, transactionID string) *payment.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.payments[paymentKey{orderID, transactionID}]
}

// --- Validation Repository Mock ---

// MockValidationRepository is a mock implementation of
// productvalidation.Repository.
type MockValidationRepository struct {
	mu          sync.Mutex
	validations map[paymentKey]*productvalidation.Validation

	SaveFunc func(ctx context.Context, v *productvalidation.Validation) error
}

func NewMockValidationRepository() *MockValidationRepository {
	return &MockValidationRepository{validations: make(map[paymentKey]*productvalidation.Validation)}
}

func (m *MockValidationRepository) Save(ctx context.Context, v *productvalidation.Validation) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, v)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.validations[paymentKey{v.OrderID, v.TransactionID}] = &cp
	return nil
}

func (m *MockValidationRepository) FindByOrderIDAndTransactionID(ctx context.Context, orderID, transactionID string) (*productvalidation.Validation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.validations[paymentKey{orderID, transactionID}]
	if !ok {
		return nil, domainErrors.ErrValidationNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *MockValidationRepository) ExistsByOrderIDAndTransactionID(ctx context.Context, orderID, transactionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.validations[paymentKey{orderID, transactionID}]
	return ok, nil
}

// Get returns the stored validation (test helper, no context needed).
func (m *MockValidationRepository) Get(orderID, transactionID string) *productvalidation.Validation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validations[paymentKey{orderID, transactionID}]
}

// --- Product Repository Mock ---

// MockProductRepository is a mock catalog backed by a code set.
type MockProductRepository struct {
	mu    sync.Mutex
	codes map[string]bool

	ExistsFunc func(ctx context.Context, code string) (bool, error)
}

func NewMockProductRepository(codes ...string) *MockProductRepository {
	m := &MockProductRepository{codes: make(map[string]bool)}
	for _, code := range codes {
		m.codes[code] = true
	}
	return m
}

func (m *MockProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[code], nil
}

// --- Inventory Repository Mock ---

// MockInventoryRepository is a mock implementation of inventory.Repository.
type MockInventoryRepository struct {
	mu           sync.Mutex
	stock        map[string]*inventory.Inventory
	reservations map[paymentKey][]*inventory.OrderInventory

	FindByProductCodeFunc func(ctx context.Context, code string) (*inventory.Inventory, error)
	UpdateInventoryFunc   func(ctx context.Context, inv *inventory.Inventory) error
}

func NewMockInventoryRepository() *MockInventoryRepository {
	return &MockInventoryRepository{
		stock:        make(map[string]*inventory.Inventory),
		reservations: make(map[paymentKey][]*inventory.OrderInventory),
	}
}

// AddStock pre-populates the mock with a stock row.
func (m *MockInventoryRepository) AddStock(inv *inventory.Inventory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[inv.ProductCode] = inv
}

func (m *MockInventoryRepository) FindByProductCode(ctx context.Context, code string) (*inventory.Inventory, error) {
	if m.FindByProductCodeFunc != nil {
		return m.FindByProductCodeFunc(ctx, code)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.stock[code]
	if !ok {
		return nil, domainErrors.ErrInventoryNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *MockInventoryRepository) UpdateInventory(ctx context.Context, inv *inventory.Inventory) error {
	if m.UpdateInventoryFunc != nil {
		return m.UpdateInventoryFunc(ctx, inv)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.stock[inv.ProductCode] = &cp
	return nil
}

func (m *MockInventoryRepository) SaveOrderInventory(ctx context.Context, oi *inventory.OrderInventory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *oi
	key := paymentKey{oi.OrderID, oi.TransactionID}
	m.reservations[key] = append(m.reservations[key], &cp)
	return nil
}

func (m *MockInventoryRepository) FindOrderInventories(ctx context.Context, orderID, transactionID string) ([]*inventory.OrderInventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reservations[paymentKey{orderID, transactionID}], nil
}

func (m *MockInventoryRepository) ExistsByOrderIDAndTransactionID(ctx context.Context, orderID, transactionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reservations[paymentKey{orderID, transactionID}]) > 0, nil
}

// Stock returns the stored stock row (test helper, no context needed).
func (m *MockInventoryRepository) Stock(code string) *inventory.Inventory {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[code]
}

// --- Order Repository Mocks ---

// MockOrderRepository is a mock implementation of order.Repository.
type MockOrderRepository struct {
	mu     sync.Mutex
	Orders []*order.Order

	SaveFunc func(ctx context.Context, o *order.Order) error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{}
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders = append(m.Orders, o)
	return nil
}

// MockEventRepository is a mock implementation of order.EventRepository. Saved
// events are kept in insertion order; the Find methods scan from the end, so
// the latest insert wins like the SQL ORDER BY created_at DESC LIMIT 1 does.
type MockEventRepository struct {
	mu     sync.Mutex
	Events []*saga.Event

	SaveFunc func(ctx context.Context, ev *saga.Event) error
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{}
}

func (m *MockEventRepository) Save(ctx context.Context, ev *saga.Event) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, ev)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, copyEvent(ev))
	return nil
}

func (m *MockEventRepository) FindAll(ctx context.Context) ([]*saga.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*saga.Event, 0, len(m.Events))
	for i := len(m.Events) - 1; i >= 0; i-- {
		result = append(result, m.Events[i])
	}
	return result, nil
}

func (m *MockEventRepository) FindTopByOrderID(ctx context.Context, orderID string) (*saga.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Events) - 1; i >= 0; i-- {
		if m.Events[i].OrderID == orderID {
			return m.Events[i], nil
		}
	}
	return nil, domainErrors.ErrEventNotFound
}

func (m *MockEventRepository) FindTopByTransactionID(ctx context.Context, transactionID string) (*saga.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.Events) - 1; i >= 0; i-- {
		if m.Events[i].TransactionID == transactionID {
			return m.Events[i], nil
		}
	}
	return nil, domainErrors.ErrEventNotFound
}

// --- Transaction Manager Mock ---

// MockTransactionManager runs the callback on the same context.
type MockTransactionManager struct {
	WithTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}
