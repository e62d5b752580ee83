package services

import (
	"context"
	"testing"
	"time"

	"butchery-pos-api/internal/models"
)

func (d *testDeps) cacheService() CacheManager {
	return NewCacheService(d.mock, d.store.Products(), d.store.Customers(), d.store.PendingOrders(), d.store.SyncQueue(), d.monitor, testLogger())
}

func TestCacheService_RefreshProducts(t *testing.T) {
	deps, cleanup := setupTestDeps(t)
	defer cleanup()

	ctx := context.Background()
	cache := deps.cacheService()

	count, err := cache.RefreshProducts(ctx)
	if err != nil {
		t.Fatalf("RefreshProducts() failed: %v", err)
	}
	if count != 2 {
		t.Errorf("RefreshProducts() = %d, want 2", count)
	}

	products, err := cache.CachedProducts(ctx)
	if err != nil {
		t.Fatalf("CachedProducts() failed: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("CachedProducts() returned %d products, want 2", len(products))
	}
}

func TestCacheService_RefreshWhileOfflineKeepsOldSnapshot(t *testing.T) {
	deps, cleanup := setupTestDeps(t)
	defer cleanup()

	ctx := context.Background()
	cache := deps.cacheService()

	if _, err := cache.RefreshProducts(ctx); err != nil {
		t.Fatalf("RefreshProducts() failed: %v", err)
	}

	deps.mock.SetOffline(true)
	if _, err := cache.RefreshProducts(ctx); err == nil {
		t.Fatal("RefreshProducts() while offline should fail")
	}
	if deps.monitor.IsOnline() {
		t.Error("Failed refresh should flip the monitor offline")
	}

	// The previous snapshot stays intact for offline browsing.
	products, err := cache.CachedProducts(ctx)
	if err != nil {
		t.Fatalf("CachedProducts() failed: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("CachedProducts() after failed refresh = %d, want 2", len(products))
	}
}

func TestCacheService_RefreshCustomers(t *testing.T) {
	deps, cleanup := setupTestDeps(t)
	defer cleanup()

	ctx := context.Background()
	deps.mock.SeedCustomers([]models.Customer{
		{ID: "c1", Name: "Wanjiku Mwangi", Phone: "+254700000001"},
	})

	count, err := deps.cacheService().RefreshCustomers(ctx)
	if err != nil {
		t.Fatalf("RefreshCustomers() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("RefreshCustomers() = %d, want 1", count)
	}
}

func TestCacheService_StorageStatus(t *testing.T) {
	deps, cleanup := setupTestDeps(t)
	defer cleanup()

	ctx := context.Background()
	cache := deps.cacheService()

	if _, err := cache.RefreshProducts(ctx); err != nil {
		t.Fatalf("RefreshProducts() failed: %v", err)
	}
	deps.mock.SetOffline(true)
	if _, err := deps.orderService().Capture(ctx, captureRequest()); err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}

	status, err := cache.StorageStatus(ctx)
	if err != nil {
		t.Fatalf("StorageStatus() failed: %v", err)
	}

	if status.PendingOrders != 1 {
		t.Errorf("PendingOrders = %d, want 1", status.PendingOrders)
	}
	if status.CachedProducts != 2 {
		t.Errorf("CachedProducts = %d, want 2", status.CachedProducts)
	}
	if status.SyncQueueSize != 2 {
		t.Errorf("SyncQueueSize = %d, want 2 (order entry + stock marker)", status.SyncQueueSize)
	}
	if status.IsOnline {
		t.Error("IsOnline should reflect the monitor's offline state")
	}
}

func TestCacheService_PruneSyncedOrders(t *testing.T) {
	deps, cleanup := setupTestDeps(t)
	defer cleanup()

	ctx := context.Background()
	cache := deps.cacheService()

	// Queue one order during a partition, then drain it so the local row is
	// marked synced.
	deps.mock.SetOffline(true)
	if _, err := deps.orderService().Capture(ctx, captureRequest()); err != nil {
		t.Fatalf("Offline Capture() failed: %v", err)
	}
	deps.mock.SetOffline(false)
	deps.monitor.ReportSuccess()
	if _, err := deps.syncEngine().Synchronize(ctx); err != nil {
		t.Fatalf("Synchronize() failed: %v", err)
	}

	// Zero retention prunes everything already synced.
	pruned, err := cache.PruneSyncedOrders(ctx, 0)
	if err != nil {
		t.Fatalf("PruneSyncedOrders() failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("PruneSyncedOrders() = %d, want 1", pruned)
	}

	// A second pass finds nothing left to prune.
	pruned, err = cache.PruneSyncedOrders(ctx, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("PruneSyncedOrders() retry failed: %v", err)
	}
	if pruned != 0 {
		t.Errorf("Second PruneSyncedOrders() = %d, want 0", pruned)
	}
}
