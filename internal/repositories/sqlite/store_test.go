package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"butchery-pos-api/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

func setupTestStore(t *testing.T) (*LocalStore, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "ldq_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	store := NewLocalStore(filepath.Join(tempDir, "pos.db"), "../../../migrations", logger)
	if err := store.Open(); err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to open local store: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(tempDir)
	}

	return store, cleanup
}

func testOrder(total float64) models.Order {
	order := models.NewOrder("jane@butchery.local")
	order.LineItems = []models.LineItem{
		{ProductID: "prod-1", Name: "Beef sirloin", UnitPrice: total, Quantity: 1},
	}
	order.CalculateTotals()
	return *order
}

func TestPendingOrderRepository_SaveOffline(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	order := testOrder(500)

	record, err := store.PendingOrders().SaveOffline(ctx, order)
	if err != nil {
		t.Fatalf("SaveOffline() failed: %v", err)
	}

	if record.OfflineID == "" {
		t.Error("SaveOffline() should assign an offline ID")
	}
	if record.Synced {
		t.Error("SaveOffline() should leave the record unsynced")
	}
	if record.LocalSeq == 0 {
		t.Error("SaveOffline() should assign a local sequence ID")
	}

	pending, err := store.PendingOrders().GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("GetPending() returned %d records, want 1", len(pending))
	}
	if pending[0].Order.ID != order.ID {
		t.Errorf("Pending order ID = %s, want %s", pending[0].Order.ID, order.ID)
	}
	if pending[0].Order.Total != 500 {
		t.Errorf("Pending order total = %v, want 500", pending[0].Order.Total)
	}

	// The sync queue entry rides in the same transaction.
	size, err := store.SyncQueue().Size(ctx)
	if err != nil {
		t.Fatalf("Size() failed: %v", err)
	}
	if size != 1 {
		t.Errorf("Sync queue size = %d, want 1", size)
	}
}

func TestPendingOrderRepository_SurvivesRestart(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "ldq_restart_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	dbPath := filepath.Join(tempDir, "pos.db")

	ctx := context.Background()
	order := testOrder(750)

	store := NewLocalStore(dbPath, "../../../migrations", logger)
	if err := store.Open(); err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := store.PendingOrders().SaveOffline(ctx, order); err != nil {
		t.Fatalf("SaveOffline() failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	// Simulated restart: a fresh store instance over the same file.
	reopened := NewLocalStore(dbPath, "../../../migrations", logger)
	if err := reopened.Open(); err != nil {
		t.Fatalf("Open() after restart failed: %v", err)
	}
	defer reopened.Close()

	pending, err := reopened.PendingOrders().GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() after restart failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("GetPending() after restart returned %d records, want 1", len(pending))
	}
	if pending[0].Order.ID != order.ID || pending[0].Synced {
		t.Error("Pending order should survive a restart unsynced with its data intact")
	}
}

func TestPendingOrderRepository_MarkSynced(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	record, err := store.PendingOrders().SaveOffline(ctx, testOrder(500))
	if err != nil {
		t.Fatalf("SaveOffline() failed: %v", err)
	}

	if err := store.PendingOrders().MarkSynced(ctx, record.OfflineID, "srv-1"); err != nil {
		t.Fatalf("MarkSynced() failed: %v", err)
	}

	pending, err := store.PendingOrders().GetPending(ctx)
	if err != nil {
		t.Fatalf("GetPending() failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("GetPending() returned %d records after sync, want 0", len(pending))
	}

	synced, err := store.pendingOrders.GetByOfflineID(ctx, record.OfflineID)
	if err != nil {
		t.Fatalf("GetByOfflineID() failed: %v", err)
	}
	if !synced.Synced {
		t.Error("Record should be marked synced")
	}
	if synced.ServerID == nil || *synced.ServerID != "srv-1" {
		t.Error("Record should carry the server-assigned ID")
	}
	if synced.SyncedAt == nil {
		t.Error("Record should carry a synced timestamp")
	}
}

func TestPendingOrderRepository_MarkSynced_UnknownOfflineID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	// A duplicate sync attempt for an unknown token is a no-op, not an error.
	if err := store.PendingOrders().MarkSynced(context.Background(), "off_missing", "srv-1"); err != nil {
		t.Errorf("MarkSynced() for unknown offline ID should be a no-op, got: %v", err)
	}
}

func TestPendingOrderRepository_PruneSynced(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	repo := store.PendingOrders()

	syncedRec, _ := repo.SaveOffline(ctx, testOrder(100))
	if _, err := repo.SaveOffline(ctx, testOrder(200)); err != nil {
		t.Fatalf("SaveOffline() failed: %v", err)
	}
	if err := repo.MarkSynced(ctx, syncedRec.OfflineID, "srv-1"); err != nil {
		t.Fatalf("MarkSynced() failed: %v", err)
	}

	// Cutoff far in the future: prunes every synced record, no unsynced ones.
	pruned, err := repo.PruneSynced(ctx, syncedRec.CreatedAt+86_400_000)
	if err != nil {
		t.Fatalf("PruneSynced() failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("PruneSynced() removed %d records, want 1", pruned)
	}

	count, err := repo.CountPending(ctx)
	if err != nil {
		t.Fatalf("CountPending() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("CountPending() = %d, want 1 (unsynced records are never pruned)", count)
	}
}

func TestGetStorageInfo(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := store.PendingOrders().SaveOffline(ctx, testOrder(500)); err != nil {
		t.Fatalf("SaveOffline() failed: %v", err)
	}
	if err := store.Products().Replace(ctx, []models.Product{{ID: "p1", Name: "Beef"}, {ID: "p2", Name: "Goat"}}); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}
	if err := store.Customers().Replace(ctx, []models.Customer{{ID: "c1", Name: "Wanjiku"}}); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}

	info, err := store.GetStorageInfo(ctx)
	if err != nil {
		t.Fatalf("GetStorageInfo() failed: %v", err)
	}

	if info.PendingOrders != 1 {
		t.Errorf("PendingOrders = %d, want 1", info.PendingOrders)
	}
	if info.CachedProducts != 2 {
		t.Errorf("CachedProducts = %d, want 2", info.CachedProducts)
	}
	if info.CachedCustomers != 1 {
		t.Errorf("CachedCustomers = %d, want 1", info.CachedCustomers)
	}
	if info.SyncQueueSize != 1 {
		t.Errorf("SyncQueueSize = %d, want 1", info.SyncQueueSize)
	}
}
