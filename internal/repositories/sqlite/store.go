package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"butchery-pos-api/internal/database"
	"butchery-pos-api/internal/repositories"

	"github.com/sirupsen/logrus"
)

// LocalStore is the local durable queue: pending orders, the generic sync
// queue and the reference-data caches, all in one on-disk SQLite database.
// It has an explicit Open/Close lifecycle and is passed to the capture and
// sync services by the container; there is no ambient singleton.
type LocalStore struct {
	dbPath         string
	migrationsPath string
	logger         *logrus.Logger

	db            *sql.DB
	pendingOrders *PendingOrderRepository
	syncQueue     *SyncQueueRepository
	products      *ProductCacheRepository
	customers     *CustomerCacheRepository
}

// NewLocalStore creates an unopened local store
func NewLocalStore(dbPath, migrationsPath string, logger *logrus.Logger) *LocalStore {
	if logger == nil {
		logger = logrus.New()
	}
	return &LocalStore{
		dbPath:         dbPath,
		migrationsPath: migrationsPath,
		logger:         logger,
	}
}

// Open initializes the database, runs migrations and wires the repositories
func (s *LocalStore) Open() error {
	if s.db != nil {
		return fmt.Errorf("local store already open")
	}

	db, err := database.InitializeDatabase(s.dbPath, s.migrationsPath, s.logger)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}

	s.db = db
	s.pendingOrders = NewPendingOrderRepository(db, s.logger)
	s.syncQueue = NewSyncQueueRepository(db, s.logger)
	s.products = NewProductCacheRepository(db, s.logger)
	s.customers = NewCustomerCacheRepository(db, s.logger)

	s.logger.WithField("db_path", s.dbPath).Info("Local store opened")
	return nil
}

// Close closes the underlying database
func (s *LocalStore) Close() error {
	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	if err != nil {
		return fmt.Errorf("failed to close local store: %w", err)
	}

	s.logger.Info("Local store closed")
	return nil
}

// PendingOrders returns the pending order repository
func (s *LocalStore) PendingOrders() repositories.PendingOrderRepository {
	return s.pendingOrders
}

// SyncQueue returns the sync queue repository
func (s *LocalStore) SyncQueue() repositories.SyncQueueRepository {
	return s.syncQueue
}

// Products returns the product cache repository
func (s *LocalStore) Products() repositories.ProductCacheRepository {
	return s.products
}

// Customers returns the customer cache repository
func (s *LocalStore) Customers() repositories.CustomerCacheRepository {
	return s.customers
}

// GetStorageInfo aggregates local storage counters for the operator-facing
// status display. IsOnline is filled in by the caller from the connectivity
// monitor; the store only knows about disk state.
func (s *LocalStore) GetStorageInfo(ctx context.Context) (*repositories.StorageInfo, error) {
	if s.db == nil {
		return nil, repositories.ErrNotOpen
	}

	pending, err := s.pendingOrders.CountPending(ctx)
	if err != nil {
		return nil, err
	}

	products, err := s.products.Count(ctx)
	if err != nil {
		return nil, err
	}

	customers, err := s.customers.Count(ctx)
	if err != nil {
		return nil, err
	}

	queueSize, err := s.syncQueue.Size(ctx)
	if err != nil {
		return nil, err
	}

	return &repositories.StorageInfo{
		PendingOrders:   pending,
		CachedProducts:  products,
		CachedCustomers: customers,
		SyncQueueSize:   queueSize,
	}, nil
}

// DB exposes the raw handle for the migration CLI and tests
func (s *LocalStore) DB() *sql.DB {
	return s.db
}
