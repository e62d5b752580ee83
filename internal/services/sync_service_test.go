package services

import (
	"context"
	"testing"

	"butchery-pos-api/internal/models"
	"butchery-pos-api/internal/remote"
)

func queueOrders(t *testing.T, deps *testDeps, totals ...float64) {
	t.Helper()
	for _, total := range totals {
		order := models.NewOrder("jane@butchery.local")
		order.LineItems = []models.LineItem{
			{ProductID: "prod-1", Name: "Beef sirloin", UnitPrice: total, Quantity: 1},
		}
		order.CalculateTotals()
		if _, err := deps.store.PendingOrders().SaveOffline(context.Background(), *order); err != nil {
			t.Fatalf("SaveOffline() failed: %v", err)
		}
	}
}

func TestSyncEngine_DrainsBacklogInOrder(t *testing.T) {
	deps, cleanup := setupTestDeps(t)
	defer cleanup()

	ctx := context.Background()
	queueOrders(t, deps, 100, 200, 300)

	report, err := deps.syncEngine().Synchronize(ctx)
	if err != nil {
		t.Fatalf("Synchronize() failed: %v", err)
	}

	if report.Attempted != 3 || report.Synced != 3 || report.Failed != 0 {
		t.Errorf("Report = %+v, want 3 attempted, 3 synced, 0 failed", report)
	}
	if deps.mock.OrderCount() != 3 {
		t.Errorf("Remote store has %d orders, want 3", deps.mock.OrderCount())
	}

	pending, err := deps.store.PendingOrders().GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Pending after drain = %d, want 0", len(pending))
	}

	size, err := deps.store.SyncQueue().Size(ctx)
	if err != nil {
		t.Fatalf("Size() failed: %v", err)
	}
	if size != 0 {
		t.Errorf("Sync queue size after drain = %d, want 0", size)
	}
}

func TestSyncEngine_DoubleDrainCreatesNoDuplicates(t *testing.T) {
	deps, cleanup := setupTestDeps(t)
	defer cleanup()

	ctx := context.Background()
	queueOrders(t, deps, 100, 200)
	engine := deps.syncEngine()

	if _, err := engine.Synchronize(ctx); err != nil {
		t.Fatalf("First Synchronize() failed: %v", err)
	}
	report, err := engine.Synchronize(ctx)
	if err != nil {
		t.Fatalf("Second Synchronize() failed: %v", err)
	}

	if report.Attempted != 0 {
		t.Errorf("Second pass attempted %d orders, want 0 (already synced)", report.Attempted)
	}
	if deps.mock.OrderCount() != 2 {
		t.Errorf("Remote store has %d orders after double drain, want 2", deps.mock.OrderCount())
	}
}

func TestSyncEngine_PartialFailureIsolation(t *testing.T) {
	deps, cleanup := setupTestDeps(t)
	defer cleanup()

	ctx := context.Background()
	queueOrders(t, deps, 100, 200, 300)

	// Item 2 of 3 fails; its neighbors must still sync.
	deps.mock.FailCall("CreateOrder", 2, remote.NewRemoteError("CreateOrder", remote.CollectionOrders, remote.ErrUnavailable, true))

	report, err := deps.syncEngine().Synchronize(ctx)
	if err != nil {
		t.Fatalf("Synchronize() failed: %v", err)
	}

	if report.Synced != 2 || report.Failed != 1 {
		t.Errorf("Report = %+v, want 2 synced, 1 failed", report)
	}

	pending, err := deps.store.PendingOrders().GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("Pending after pass = %d, want 1", len(pending))
	}
	if pending[0].Order.Total != 200 {
		t.Errorf("Remaining pending order total = %v, want 200", pending[0].Order.Total)
	}

	// The retry pass picks up only the failed item, verbatim.
	deps.monitor.ReportSuccess()
	retry, err := deps.syncEngine().Synchronize(ctx)
	if err != nil {
		t.Fatalf("Retry Synchronize() failed: %v", err)
	}
	if retry.Attempted != 1 || retry.Synced != 1 {
		t.Errorf("Retry report = %+v, want 1 attempted, 1 synced", retry)
	}
	if deps.mock.OrderCount() != 3 {
		t.Errorf("Remote store has %d orders, want 3", deps.mock.OrderCount())
	}
}

func TestSyncEngine_ConcurrentTriggerCoalesces(t *testing.T) {
	deps, cleanup := setupTestDeps(t)
	defer cleanup()

	engine := deps.syncEngine()
	engine.running.Store(true)

	report, err := engine.Synchronize(context.Background())
	if err != nil {
		t.Fatalf("Synchronize() failed: %v", err)
	}
	if !report.Skipped {
		t.Error("Trigger during a running pass should coalesce to a no-op")
	}
}

func TestSyncEngine_OfflineTriggerIsNoOp(t *testing.T) {
	deps, cleanup := setupTestDeps(t)
	defer cleanup()

	queueOrders(t, deps, 100)
	deps.monitor.ReportFailure(remote.NewRemoteError("Ping", "", remote.ErrUnavailable, true))

	report, err := deps.syncEngine().Synchronize(context.Background())
	if err != nil {
		t.Fatalf("Synchronize() failed: %v", err)
	}
	if !report.Skipped || report.Attempted != 0 {
		t.Errorf("Offline trigger should skip, got %+v", report)
	}
	if deps.mock.CreateOrderCalls != 0 {
		t.Error("Offline trigger must not touch the remote store")
	}
}

func TestSyncEngine_OnlineTransitionTriggersDrain(t *testing.T) {
	deps, cleanup := setupTestDeps(t)
	defer cleanup()

	ctx := context.Background()
	queueOrders(t, deps, 100)

	engine := deps.syncEngine()
	engine.BindMonitor()

	drained := make(chan SyncReport, 1)
	engine.OnComplete(func(report SyncReport) { drained <- report })

	deps.monitor.ReportFailure(remote.NewRemoteError("Ping", "", remote.ErrUnavailable, true))
	deps.monitor.ReportSuccess()

	report := <-drained
	if report.Synced != 1 {
		t.Errorf("Reconnection drain synced %d orders, want 1", report.Synced)
	}

	pending, err := deps.store.PendingOrders().GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Pending after reconnection drain = %d, want 0", len(pending))
	}
}

func TestSyncEngine_ListenersOnlyFireWhenSomethingSynced(t *testing.T) {
	deps, cleanup := setupTestDeps(t)
	defer cleanup()

	engine := deps.syncEngine()
	fired := 0
	engine.OnComplete(func(SyncReport) { fired++ })

	if _, err := engine.Synchronize(context.Background()); err != nil {
		t.Fatalf("Synchronize() failed: %v", err)
	}
	if fired != 0 {
		t.Error("Listeners should not fire after an empty pass")
	}
}
