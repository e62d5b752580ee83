package models

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// PendingOrderRecord wraps an order captured while the remote store was
// unreachable. The offline ID is the idempotency key for the sync pass; the
// record is never deleted once synced, it stays as an audit trail until
// explicitly pruned.
type PendingOrderRecord struct {
	LocalSeq  int64   `json:"local_seq" db:"local_seq"`
	OfflineID string  `json:"offline_id" db:"offline_id"`
	Order     Order   `json:"order"`
	CreatedAt int64   `json:"created_at_ms" db:"created_at_ms"`
	Synced    bool    `json:"synced" db:"synced"`
	ServerID  *string `json:"server_id,omitempty" db:"server_id"`
	SyncedAt  *int64  `json:"synced_at_ms,omitempty" db:"synced_at_ms"`
}

// NewPendingOrderRecord wraps an order for offline storage
func NewPendingOrderRecord(order Order) *PendingOrderRecord {
	return &PendingOrderRecord{
		OfflineID: NewOfflineID(),
		Order:     order,
		CreatedAt: time.Now().UnixMilli(),
		Synced:    false,
	}
}

// NewOfflineID mints a client-side idempotency token: random bytes plus the
// capture timestamp, so collisions are impossible across terminals and the
// token still sorts roughly by capture time.
func NewOfflineID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back to
		// the timestamp alone rather than panicking mid-sale.
		return fmt.Sprintf("off_%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("off_%s_%d", hex.EncodeToString(buf), time.Now().UnixMilli())
}

// MarshalOrder serializes the wrapped order for durable storage
func (r *PendingOrderRecord) MarshalOrder() ([]byte, error) {
	data, err := json.Marshal(r.Order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pending order payload: %w", err)
	}
	return data, nil
}

// UnmarshalOrder restores the wrapped order from durable storage
func (r *PendingOrderRecord) UnmarshalOrder(data []byte) error {
	if err := json.Unmarshal(data, &r.Order); err != nil {
		return fmt.Errorf("failed to unmarshal pending order payload: %w", err)
	}
	return nil
}

// Mutation types carried on the sync queue
const (
	MutationTypeOrder           = "order"
	MutationTypeStockAdjustment = "stock_adjustment"
)

// Mutation actions carried on the sync queue
const (
	MutationActionCreate = "create"
	MutationActionUpdate = "update"
)

// SyncQueueEntry is a generic envelope for an offline mutation. Orders are the
// main tenant today; stock adjustments ride the same queue, and future entity
// types can without a schema change.
type SyncQueueEntry struct {
	ID         int64           `json:"id" db:"id"`
	Type       string          `json:"type" db:"type"`
	Action     string          `json:"action" db:"action"`
	Ref        string          `json:"ref" db:"ref"`
	Payload    json.RawMessage `json:"payload" db:"payload"`
	EnqueuedAt int64           `json:"enqueued_at_ms" db:"enqueued_at_ms"`
}

// StockAdjustment is the payload of a stock_adjustment queue entry: a marker
// that an order's inventory effect has not been applied remotely yet.
type StockAdjustment struct {
	OrderID   string  `json:"order_id"`
	ProductID string  `json:"product_id"`
	Delta     float64 `json:"delta"`
}

// Marshal serializes the adjustment for the sync queue
func (a StockAdjustment) Marshal() ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stock adjustment: %w", err)
	}
	return data, nil
}

// UnmarshalStockAdjustment restores an adjustment from a queue payload
func UnmarshalStockAdjustment(data []byte) (StockAdjustment, error) {
	var adjustment StockAdjustment
	if err := json.Unmarshal(data, &adjustment); err != nil {
		return adjustment, fmt.Errorf("failed to unmarshal stock adjustment: %w", err)
	}
	return adjustment, nil
}
