package repositories

import (
	"context"

	"butchery-pos-api/internal/models"
)

// PendingOrderRepository stores orders captured while the remote store was
// unreachable. Records survive process restarts; only the sync engine flips
// their synced state.
type PendingOrderRepository interface {
	// SaveOffline persists the order and its sync-queue entry in one
	// transaction. The record is durable before the call returns.
	SaveOffline(ctx context.Context, order models.Order) (*models.PendingOrderRecord, error)

	// GetPending returns all records with synced=false in insertion order.
	GetPending(ctx context.Context) ([]*models.PendingOrderRecord, error)

	// MarkSynced flips the record identified by its offline ID to synced and
	// attaches the server-assigned ID. A missing offline ID is a no-op: the
	// caller may be replaying a duplicate sync attempt.
	MarkSynced(ctx context.Context, offlineID, serverID string) error

	// CountPending returns the number of unsynced records.
	CountPending(ctx context.Context) (int, error)

	// PruneSynced deletes synced records older than the cutoff (epoch ms).
	// Unsynced records are never pruned.
	PruneSynced(ctx context.Context, olderThanMs int64) (int64, error)
}

// SyncQueueRepository is the generic FIFO of offline mutations
type SyncQueueRepository interface {
	Enqueue(ctx context.Context, entry *models.SyncQueueEntry) error
	ListByType(ctx context.Context, mutationType string) ([]*models.SyncQueueEntry, error)
	Delete(ctx context.Context, id int64) error
	DeleteByRef(ctx context.Context, mutationType, ref string) error
	Size(ctx context.Context) (int, error)
}

// ProductCacheRepository holds the offline snapshot of the product catalog
type ProductCacheRepository interface {
	// Replace atomically swaps the cached set: readers never observe a
	// partially cleared cache.
	Replace(ctx context.Context, products []models.Product) error
	GetAll(ctx context.Context) ([]models.Product, error)
	Count(ctx context.Context) (int, error)
}

// CustomerCacheRepository holds the offline snapshot of the customer list
type CustomerCacheRepository interface {
	Replace(ctx context.Context, customers []models.Customer) error
	GetAll(ctx context.Context) ([]models.Customer, error)
	Count(ctx context.Context) (int, error)
}

// StorageInfo is the operator-facing aggregate of local storage state
type StorageInfo struct {
	PendingOrders   int  `json:"pending_orders"`
	CachedProducts  int  `json:"cached_products"`
	CachedCustomers int  `json:"cached_customers"`
	SyncQueueSize   int  `json:"sync_queue_size"`
	IsOnline        bool `json:"is_online"`
}
