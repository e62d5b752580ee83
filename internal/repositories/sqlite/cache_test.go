package sqlite

import (
	"context"
	"testing"

	"butchery-pos-api/internal/models"
)

func TestProductCacheRepository_Replace(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	repo := store.Products()

	first := []models.Product{
		{ID: "p1", Name: "Beef sirloin", UnitPrice: 800, Unit: "kg", Stock: 42},
		{ID: "p2", Name: "Goat ribs", UnitPrice: 650, Unit: "kg", Stock: 18},
	}
	if err := repo.Replace(ctx, first); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}

	// Full-replace semantics: the second snapshot completely supersedes the
	// first, including entries that vanished from the catalog.
	second := []models.Product{
		{ID: "p2", Name: "Goat ribs", UnitPrice: 700, Unit: "kg", Stock: 15},
		{ID: "p3", Name: "Mutton chops", UnitPrice: 720, Unit: "kg", Stock: 9},
	}
	if err := repo.Replace(ctx, second); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}

	cached, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() failed: %v", err)
	}
	if len(cached) != 2 {
		t.Fatalf("GetAll() returned %d products, want 2", len(cached))
	}

	byID := make(map[string]models.Product)
	for _, p := range cached {
		byID[p.ID] = p
	}
	if _, ok := byID["p1"]; ok {
		t.Error("Replaced cache should not contain products from the previous snapshot")
	}
	if byID["p2"].UnitPrice != 700 {
		t.Errorf("p2 unit price = %v, want 700", byID["p2"].UnitPrice)
	}
}

func TestProductCacheRepository_Replace_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	repo := store.Products()

	if err := repo.Replace(ctx, []models.Product{{ID: "p1", Name: "Beef"}}); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}
	if err := repo.Replace(ctx, nil); err != nil {
		t.Fatalf("Replace(nil) failed: %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0 after replacing with an empty set", count)
	}
}

func TestCustomerCacheRepository_Replace(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	repo := store.Customers()

	customers := []models.Customer{
		{ID: "c1", Name: "Wanjiku Mwangi", Phone: "+254700000001", LoyaltyPoints: 120},
		{ID: "c2", Name: "Otieno Odhiambo", Phone: "+254700000002", CreditBalance: 450},
	}
	if err := repo.Replace(ctx, customers); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}

	cached, err := repo.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() failed: %v", err)
	}
	if len(cached) != 2 {
		t.Fatalf("GetAll() returned %d customers, want 2", len(cached))
	}

	byID := make(map[string]models.Customer)
	for _, c := range cached {
		byID[c.ID] = c
	}
	if byID["c1"].LoyaltyPoints != 120 {
		t.Errorf("c1 loyalty points = %d, want 120", byID["c1"].LoyaltyPoints)
	}
	if byID["c2"].CreditBalance != 450 {
		t.Errorf("c2 credit balance = %v, want 450", byID["c2"].CreditBalance)
	}
}

func TestSyncQueueRepository_FIFO(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	queue := store.SyncQueue()

	for i, ref := range []string{"adj-1", "adj-2", "adj-3"} {
		entry := &models.SyncQueueEntry{
			Type:       models.MutationTypeStockAdjustment,
			Action:     models.MutationActionUpdate,
			Ref:        ref,
			Payload:    []byte(`{"product_id":"p1","delta":-1}`),
			EnqueuedAt: int64(1000 + i),
		}
		if err := queue.Enqueue(ctx, entry); err != nil {
			t.Fatalf("Enqueue() failed: %v", err)
		}
	}

	entries, err := queue.ListByType(ctx, models.MutationTypeStockAdjustment)
	if err != nil {
		t.Fatalf("ListByType() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("ListByType() returned %d entries, want 3", len(entries))
	}
	for i, want := range []string{"adj-1", "adj-2", "adj-3"} {
		if entries[i].Ref != want {
			t.Errorf("entry %d ref = %s, want %s (FIFO order)", i, entries[i].Ref, want)
		}
	}

	if err := queue.Delete(ctx, entries[0].ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := queue.DeleteByRef(ctx, models.MutationTypeStockAdjustment, "adj-3"); err != nil {
		t.Fatalf("DeleteByRef() failed: %v", err)
	}

	size, err := queue.Size(ctx)
	if err != nil {
		t.Fatalf("Size() failed: %v", err)
	}
	if size != 1 {
		t.Errorf("Size() = %d, want 1", size)
	}
}
