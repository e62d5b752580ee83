package remote

import (
	"context"
	"fmt"
	"sync"

	"butchery-pos-api/internal/models"
)

// MockStore is an in-memory implementation of Store for testing. It can
// simulate a network partition (SetOffline) and per-operation failures
// (FailWith), and applies the same offline-ID idempotency the hosted store
// guarantees.
type MockStore struct {
	mu              sync.RWMutex
	offline         bool
	failures        map[string]error
	callCounts      map[string]int
	callFailures    map[string]map[int]error
	orders          map[string]models.Order
	orderOfflineIDs map[string]string
	expenses        []models.Expense
	products        map[string]models.Product
	customers       []models.Customer
	reconciliations map[string]models.ReconciliationRecord
	nextID          int

	// Call counters for asserting retry and saga behavior
	CreateOrderCalls int
	AdjustStockCalls int
	PingCalls        int
}

// NewMockStore creates a new MockStore instance
func NewMockStore() *MockStore {
	return &MockStore{
		failures:        make(map[string]error),
		callCounts:      make(map[string]int),
		callFailures:    make(map[string]map[int]error),
		orders:          make(map[string]models.Order),
		orderOfflineIDs: make(map[string]string),
		products:        make(map[string]models.Product),
		reconciliations: make(map[string]models.ReconciliationRecord),
	}
}

// SetOffline simulates a network partition: every operation fails with a
// connectivity error until the flag is cleared.
func (m *MockStore) SetOffline(offline bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offline = offline
}

// FailWith injects an error for the named operation. The error persists
// until cleared with a nil err.
func (m *MockStore) FailWith(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// FailCall injects an error for a single invocation of the named operation,
// identified by its 1-based call number. Useful for failing item N of a
// batch while its neighbors succeed.
func (m *MockStore) FailCall(op string, call int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.callFailures[op] == nil {
		m.callFailures[op] = make(map[int]error)
	}
	m.callFailures[op][call] = err
}

// SeedProducts loads products into the mock catalog
func (m *MockStore) SeedProducts(products []models.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range products {
		m.products[p.ID] = p
	}
}

// SeedCustomers loads customers into the mock store
func (m *MockStore) SeedCustomers(customers []models.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers = append(m.customers, customers...)
}

// SeedExpenses loads expenses into the mock store
func (m *MockStore) SeedExpenses(expenses []models.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses = append(m.expenses, expenses...)
}

// OrderCount returns the number of stored order documents
func (m *MockStore) OrderCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

// ProductStock returns the current stock level of a product
func (m *MockStore) ProductStock(productID string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.products[productID].Stock
}

func (m *MockStore) gate(op, collection string) error {
	m.callCounts[op]++
	if m.offline {
		return NewRemoteError(op, collection, ErrUnavailable, true)
	}
	if err, ok := m.failures[op]; ok {
		return err
	}
	if err, ok := m.callFailures[op][m.callCounts[op]]; ok {
		return err
	}
	return nil
}

// CreateOrder implements Store.CreateOrder
func (m *MockStore) CreateOrder(ctx context.Context, order models.Order, offlineID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateOrderCalls++
	if err := m.gate("CreateOrder", CollectionOrders); err != nil {
		return "", err
	}

	// Idempotent on offline ID: a resubmission returns the existing document.
	if serverID, exists := m.orderOfflineIDs[offlineID]; exists {
		return serverID, nil
	}

	m.nextID++
	serverID := fmt.Sprintf("srv_%d", m.nextID)
	order.ServerID = serverID
	order.Synced = true
	m.orders[serverID] = order
	if offlineID != "" {
		m.orderOfflineIDs[offlineID] = serverID
	}
	return serverID, nil
}

// OrdersByDay implements Store.OrdersByDay
func (m *MockStore) OrdersByDay(ctx context.Context, dateKey string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.gate("OrdersByDay", CollectionOrders); err != nil {
		return nil, err
	}

	var result []models.Order
	for _, order := range m.orders {
		if models.DateKey(order.CreatedAt) == dateKey {
			result = append(result, order)
		}
	}
	return result, nil
}

// DeleteOrder implements Store.DeleteOrder
func (m *MockStore) DeleteOrder(ctx context.Context, serverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.gate("DeleteOrder", CollectionOrders); err != nil {
		return err
	}
	if _, exists := m.orders[serverID]; !exists {
		return NewRemoteError("DeleteOrder", CollectionOrders, ErrNotFound, false)
	}
	delete(m.orders, serverID)
	return nil
}

// ExpensesByDay implements Store.ExpensesByDay
func (m *MockStore) ExpensesByDay(ctx context.Context, dateKey string) ([]models.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.gate("ExpensesByDay", CollectionExpenses); err != nil {
		return nil, err
	}

	var result []models.Expense
	for _, expense := range m.expenses {
		if models.DateKey(expense.IncurredAt) == dateKey {
			result = append(result, expense)
		}
	}
	return result, nil
}

// AdjustStock implements Store.AdjustStock
func (m *MockStore) AdjustStock(ctx context.Context, productID string, delta float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AdjustStockCalls++
	if err := m.gate("AdjustStock", CollectionProducts); err != nil {
		return err
	}

	product, exists := m.products[productID]
	if !exists {
		return NewRemoteError("AdjustStock", CollectionProducts, ErrNotFound, false)
	}
	product.Stock += delta
	m.products[productID] = product
	return nil
}

// ListProducts implements Store.ListProducts
func (m *MockStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.gate("ListProducts", CollectionProducts); err != nil {
		return nil, err
	}

	result := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		result = append(result, p)
	}
	return result, nil
}

// ListCustomers implements Store.ListCustomers
func (m *MockStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.gate("ListCustomers", CollectionCustomers); err != nil {
		return nil, err
	}
	return append([]models.Customer(nil), m.customers...), nil
}

// CreateReconciliation implements Store.CreateReconciliation
func (m *MockStore) CreateReconciliation(ctx context.Context, record models.ReconciliationRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.gate("CreateReconciliation", CollectionReconciliations); err != nil {
		return "", err
	}
	if _, exists := m.reconciliations[record.DateKey]; exists {
		return "", NewRemoteError("CreateReconciliation", CollectionReconciliations, ErrConflict, false)
	}

	m.nextID++
	record.ID = fmt.Sprintf("rec_%d", m.nextID)
	m.reconciliations[record.DateKey] = record
	return record.ID, nil
}

// ReconciliationByDate implements Store.ReconciliationByDate
func (m *MockStore) ReconciliationByDate(ctx context.Context, dateKey string) (*models.ReconciliationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.gate("ReconciliationByDate", CollectionReconciliations); err != nil {
		return nil, err
	}
	record, exists := m.reconciliations[dateKey]
	if !exists {
		return nil, NewRemoteError("ReconciliationByDate", CollectionReconciliations, ErrNotFound, false)
	}
	return &record, nil
}

// Ping implements Store.Ping
func (m *MockStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PingCalls++
	return m.gate("Ping", "")
}
