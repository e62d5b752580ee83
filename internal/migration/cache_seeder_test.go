package migration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"butchery-pos-api/internal/repositories/sqlite"
)

func setupSeederTest(t *testing.T) (*sqlite.LocalStore, string, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "seeder_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	store := sqlite.NewLocalStore(filepath.Join(tempDir, "pos.db"), "../../migrations", logger)
	if err := store.Open(); err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to open local store: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.RemoveAll(tempDir)
	}
	return store, tempDir, cleanup
}

func writeExport(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestCacheSeeder_Seed(t *testing.T) {
	store, tempDir, cleanup := setupSeederTest(t)
	defer cleanup()

	writeExport(t, tempDir, "products.json", `[
		{"id": "prod-1", "name": "Beef sirloin", "unit_price": 800, "unit": "kg", "stock": 50},
		{"id": "", "name": "orphan"},
		{"id": "prod-2", "name": "Goat ribs", "unit_price": 650, "unit": "kg", "stock": 30}
	]`)
	writeExport(t, tempDir, "customers.json", `[
		{"id": "c1", "name": "Wanjiku Mwangi", "phone": "+254700000001"}
	]`)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	seeder := NewCacheSeeder(store.Products(), store.Customers(), tempDir, logger)
	result, err := seeder.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	if result.ProductsSeeded != 2 {
		t.Errorf("ProductsSeeded = %d, want 2 (orphan skipped)", result.ProductsSeeded)
	}
	if result.CustomersSeeded != 1 {
		t.Errorf("CustomersSeeded = %d, want 1", result.CustomersSeeded)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one skip warning", result.Warnings)
	}

	products, err := store.Products().GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() failed: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("Cached products = %d, want 2", len(products))
	}

	if err := seeder.Validate(context.Background()); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
}

func TestCacheSeeder_MissingFilesAreWarnings(t *testing.T) {
	store, tempDir, cleanup := setupSeederTest(t)
	defer cleanup()

	writeExport(t, tempDir, "products.json", `[{"id": "prod-1", "name": "Beef sirloin", "unit_price": 800}]`)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	seeder := NewCacheSeeder(store.Products(), store.Customers(), tempDir, logger)
	result, err := seeder.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed() with a products-only export failed: %v", err)
	}

	if result.ProductsSeeded != 1 {
		t.Errorf("ProductsSeeded = %d, want 1", result.ProductsSeeded)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("Warnings = %v, want missing-customers warning", result.Warnings)
	}
}

func TestCacheSeeder_CheckJSONFilesExist(t *testing.T) {
	_, tempDir, cleanup := setupSeederTest(t)
	defer cleanup()

	logger := logrus.New()
	seeder := NewCacheSeeder(nil, nil, tempDir, logger)

	hasFiles, _ := seeder.CheckJSONFilesExist()
	if hasFiles {
		t.Error("Empty directory should report no export files")
	}

	writeExport(t, tempDir, "customers.json", `[]`)
	hasFiles, existing := seeder.CheckJSONFilesExist()
	if !hasFiles || len(existing) != 1 || existing[0] != "customers.json" {
		t.Errorf("CheckJSONFilesExist() = %v/%v, want customers.json only", hasFiles, existing)
	}
}
