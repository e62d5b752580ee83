package services

import (
	"context"
	"time"

	"butchery-pos-api/internal/models"
	"butchery-pos-api/internal/repositories"
)

// OrderCapture defines the interface for order capture operations
type OrderCapture interface {
	// Capture accepts a finalized sale and guarantees it is never lost:
	// remote write when reachable, durable local queue otherwise.
	Capture(ctx context.Context, req *CaptureOrderRequest) (*CaptureResult, error)

	// PendingOrders returns the locally queued, not-yet-synced orders.
	PendingOrders(ctx context.Context) ([]*models.PendingOrderRecord, error)
}

// Synchronizer defines the interface for draining the local queue
type Synchronizer interface {
	// Synchronize runs one drain pass. Concurrent triggers coalesce into the
	// running pass; an offline trigger is a recorded no-op.
	Synchronize(ctx context.Context) (*SyncReport, error)

	// OnComplete registers a listener invoked after any pass that synced at
	// least one order.
	OnComplete(listener func(SyncReport))
}

// Reconciler defines the interface for end-of-day cash reconciliation
type Reconciler interface {
	ComputeExpectedCash(ctx context.Context, dateKey string) (float64, error)
	ComputePaymentBreakdown(ctx context.Context, dateKey string) (*models.PaymentBreakdown, error)
	CloseDay(ctx context.Context, req *CloseDayRequest) (*models.ReconciliationRecord, error)

	// TodayReconciliation returns today's record, or nil when the day is
	// still open.
	TodayReconciliation(ctx context.Context) (*models.ReconciliationRecord, error)
}

// CacheManager defines the interface for the offline reference-data caches
// and local storage maintenance
type CacheManager interface {
	RefreshProducts(ctx context.Context) (int, error)
	RefreshCustomers(ctx context.Context) (int, error)
	CachedProducts(ctx context.Context) ([]models.Product, error)
	CachedCustomers(ctx context.Context) ([]models.Customer, error)
	StorageStatus(ctx context.Context) (*repositories.StorageInfo, error)

	// PruneSyncedOrders removes synced order history older than the retention
	// window and reports how many records were deleted.
	PruneSyncedOrders(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Request and response types for service operations

// CaptureOrderRequest carries a finalized sale from the till
type CaptureOrderRequest struct {
	LineItems     []models.LineItem     `json:"line_items" validate:"required,min=1,dive"`
	Discount      *models.Discount      `json:"discount,omitempty"`
	Tax           float64               `json:"tax" validate:"gte=0"`
	DeliveryCost  float64               `json:"delivery_cost" validate:"gte=0"`
	PaymentMethod models.PaymentMethod  `json:"payment_method" validate:"required,oneof=cash card mpesa split credit"`
	PaymentDetail *models.PaymentDetail `json:"payment_detail,omitempty"`
	Cashier       string                `json:"cashier" validate:"required"`
	CustomerID    *string               `json:"customer_id,omitempty"`
}

// CaptureResult is the same shape whether the order went straight through or
// was queued locally; the cashier experience does not change.
type CaptureResult struct {
	Order     models.Order `json:"order"`
	Queued    bool         `json:"queued"`
	OfflineID string       `json:"offline_id,omitempty"`
}

// SyncReport summarizes one drain pass
type SyncReport struct {
	Skipped             bool   `json:"skipped"`
	SkipReason          string `json:"skip_reason,omitempty"`
	Attempted           int    `json:"attempted"`
	Synced              int    `json:"synced"`
	Failed              int    `json:"failed"`
	AdjustmentsReplayed int    `json:"adjustments_replayed"`
	AdjustmentsFailed   int    `json:"adjustments_failed"`
}

// CloseDayRequest carries the operator's drawer count for a day close
type CloseDayRequest struct {
	DateKey       string                   `json:"date" validate:"required"`
	Denominations models.DenominationCount `json:"denominations" validate:"required"`
	Notes         string                   `json:"notes,omitempty"`
	ClosedBy      string                   `json:"closed_by" validate:"required"`
}
