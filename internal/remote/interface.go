package remote

import (
	"context"

	"butchery-pos-api/internal/models"
)

// Remote collection names
const (
	CollectionOrders          = "orders"
	CollectionExpenses        = "expenses"
	CollectionProducts        = "products"
	CollectionCustomers       = "customers"
	CollectionReconciliations = "reconciliations"
)

// Store defines the interface for the hosted document store backing the
// terminal. Implementations must report connectivity failures and semantic
// rejections through RemoteError so callers can tell them apart.
type Store interface {
	// CreateOrder persists an order and returns the server-assigned document
	// ID. The offline ID travels with the payload as an idempotency token:
	// resubmitting the same offline ID returns the existing document instead
	// of creating a duplicate.
	CreateOrder(ctx context.Context, order models.Order, offlineID string) (string, error)

	// OrdersByDay returns all orders recorded on the given calendar date
	// (YYYY-MM-DD).
	OrdersByDay(ctx context.Context, dateKey string) ([]models.Order, error)

	// DeleteOrder removes an order document by its server-assigned ID.
	DeleteOrder(ctx context.Context, serverID string) error

	// ExpensesByDay returns all expenses incurred on the given calendar date.
	ExpensesByDay(ctx context.Context, dateKey string) ([]models.Expense, error)

	// AdjustStock applies a stock delta to a product document.
	AdjustStock(ctx context.Context, productID string, delta float64) error

	// ListProducts returns the full product catalog for cache refresh.
	ListProducts(ctx context.Context) ([]models.Product, error)

	// ListCustomers returns the full customer list for cache refresh.
	ListCustomers(ctx context.Context) ([]models.Customer, error)

	// CreateReconciliation persists a day-close record and returns the
	// server-assigned document ID.
	CreateReconciliation(ctx context.Context, record models.ReconciliationRecord) (string, error)

	// ReconciliationByDate returns the reconciliation record for the given
	// calendar date, or a not-found error if the day is still open.
	ReconciliationByDate(ctx context.Context, dateKey string) (*models.ReconciliationRecord, error)

	// Ping performs a lightweight reachability probe.
	Ping(ctx context.Context) error
}
