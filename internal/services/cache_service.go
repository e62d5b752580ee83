package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"butchery-pos-api/internal/models"
	"butchery-pos-api/internal/remote"
	"butchery-pos-api/internal/repositories"
)

// cacheService implements the CacheManager interface: it pulls reference
// data from the remote store into the local caches so the till can render a
// catalog while offline.
type cacheService struct {
	store        remote.Store
	productRepo  repositories.ProductCacheRepository
	customerRepo repositories.CustomerCacheRepository
	pendingRepo  repositories.PendingOrderRepository
	queueRepo    repositories.SyncQueueRepository
	monitor      *ConnectivityMonitor
	logger       *logrus.Logger
}

// NewCacheService creates a new cache manager
func NewCacheService(
	store remote.Store,
	productRepo repositories.ProductCacheRepository,
	customerRepo repositories.CustomerCacheRepository,
	pendingRepo repositories.PendingOrderRepository,
	queueRepo repositories.SyncQueueRepository,
	monitor *ConnectivityMonitor,
	logger *logrus.Logger,
) CacheManager {
	return &cacheService{
		store:        store,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		pendingRepo:  pendingRepo,
		queueRepo:    queueRepo,
		monitor:      monitor,
		logger:       logger,
	}
}

// RefreshProducts replaces the cached catalog with a fresh remote snapshot
func (s *cacheService) RefreshProducts(ctx context.Context) (int, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		s.monitor.ReportFailure(err)
		return 0, fmt.Errorf("failed to fetch product catalog: %w", err)
	}
	s.monitor.ReportSuccess()

	if err := s.productRepo.Replace(ctx, products); err != nil {
		return 0, fmt.Errorf("failed to cache products: %w", err)
	}

	s.logger.WithField("count", len(products)).Info("Product cache refreshed")
	return len(products), nil
}

// RefreshCustomers replaces the cached customer list with a fresh remote
// snapshot
func (s *cacheService) RefreshCustomers(ctx context.Context) (int, error) {
	customers, err := s.store.ListCustomers(ctx)
	if err != nil {
		s.monitor.ReportFailure(err)
		return 0, fmt.Errorf("failed to fetch customers: %w", err)
	}
	s.monitor.ReportSuccess()

	if err := s.customerRepo.Replace(ctx, customers); err != nil {
		return 0, fmt.Errorf("failed to cache customers: %w", err)
	}

	s.logger.WithField("count", len(customers)).Info("Customer cache refreshed")
	return len(customers), nil
}

// CachedProducts returns the most recently cached catalog snapshot
func (s *cacheService) CachedProducts(ctx context.Context) ([]models.Product, error) {
	return s.productRepo.GetAll(ctx)
}

// CachedCustomers returns the most recently cached customer snapshot
func (s *cacheService) CachedCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.customerRepo.GetAll(ctx)
}

// StorageStatus aggregates local store counters with the current
// connectivity state for the operator status display
func (s *cacheService) StorageStatus(ctx context.Context) (*repositories.StorageInfo, error) {
	info := &repositories.StorageInfo{IsOnline: s.monitor.IsOnline()}

	var err error
	if info.PendingOrders, err = s.pendingRepo.CountPending(ctx); err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}
	if info.CachedProducts, err = s.productRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count cached products: %w", err)
	}
	if info.CachedCustomers, err = s.customerRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count cached customers: %w", err)
	}
	if info.SyncQueueSize, err = s.queueRepo.Size(ctx); err != nil {
		return nil, fmt.Errorf("failed to read sync queue size: %w", err)
	}

	return info, nil
}

// PruneSyncedOrders deletes synced pending-order records older than the
// retention window. Unsynced records are never touched; pruning is the only
// way synced history leaves the local store.
func (s *cacheService) PruneSyncedOrders(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixMilli()

	pruned, err := s.pendingRepo.PruneSynced(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune synced orders: %w", err)
	}

	if pruned > 0 {
		s.logger.WithFields(logrus.Fields{
			"pruned":    pruned,
			"retention": olderThan.String(),
		}).Info("Synced order history pruned")
	}
	return pruned, nil
}
