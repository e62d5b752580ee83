package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"butchery-pos-api/internal/config"
	"butchery-pos-api/internal/models"
	"butchery-pos-api/internal/remote"
	"butchery-pos-api/internal/services"
)

func testConfig(t *testing.T) (*config.Config, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "container_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	cfg := &config.Config{
		Environment: "test",
		Port:        "8080",
		Database: config.DatabaseConfig{
			Path:           filepath.Join(tempDir, "pos.db"),
			MigrationsPath: "../../migrations",
		},
		Remote: config.RemoteConfig{
			BaseURL: "http://localhost:9090",
		},
		JWT: config.JWTConfig{
			Secret:      "test-secret",
			ExpiryHours: 24,
		},
	}

	return cfg, func() { os.RemoveAll(tempDir) }
}

// TestNewContainer verifies that the container can be created successfully
func TestNewContainer(t *testing.T) {
	cfg, cleanup := testConfig(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	container, err := NewContainerWithOptions(cfg, logger, &ContainerOptions{
		RemoteStore:    remote.NewMockStore(),
		DisableProbing: true,
	})
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}

	if container.OrderService == nil {
		t.Error("OrderService is nil")
	}
	if container.SyncService == nil {
		t.Error("SyncService is nil")
	}
	if container.ReconciliationService == nil {
		t.Error("ReconciliationService is nil")
	}
	if container.CacheService == nil {
		t.Error("CacheService is nil")
	}
	if container.Monitor == nil {
		t.Error("Monitor is nil")
	}
	if container.AuthService == nil {
		t.Error("AuthService is nil")
	}

	if err := container.Close(); err != nil {
		t.Errorf("Failed to close container: %v", err)
	}
}

// TestContainerWiring verifies the services share the local store and monitor
func TestContainerWiring(t *testing.T) {
	cfg, cleanup := testConfig(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	mock := remote.NewMockStore()
	container, err := NewContainerWithOptions(cfg, logger, &ContainerOptions{
		RemoteStore:    mock,
		DisableProbing: true,
	})
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	defer container.Close()

	ctx := context.Background()

	// A capture against an unreachable remote lands in the container's
	// local store and flips its monitor.
	mock.SetOffline(true)
	result, err := container.OrderService.Capture(ctx, captureRequest())
	if err != nil {
		t.Fatalf("Capture() failed: %v", err)
	}
	if !result.Queued {
		t.Error("Capture against an offline remote should queue")
	}
	if container.Monitor.IsOnline() {
		t.Error("Monitor should be offline after a failed remote write")
	}

	status, err := container.CacheService.StorageStatus(ctx)
	if err != nil {
		t.Fatalf("StorageStatus() failed: %v", err)
	}
	if status.PendingOrders != 1 {
		t.Errorf("PendingOrders = %d, want 1", status.PendingOrders)
	}

	// Reconnection drains the queue through the bound engine.
	drained := make(chan struct{}, 1)
	container.SyncService.OnComplete(func(services.SyncReport) { drained <- struct{}{} })

	mock.SetOffline(false)
	container.Monitor.ReportSuccess()
	<-drained

	if mock.OrderCount() != 1 {
		t.Errorf("Remote store has %d orders after reconnection, want 1", mock.OrderCount())
	}
}

func captureRequest() *services.CaptureOrderRequest {
	return &services.CaptureOrderRequest{
		LineItems: []models.LineItem{
			{ProductID: "prod-1", Name: "Beef sirloin", UnitPrice: 800, Quantity: 1},
		},
		PaymentMethod: models.PaymentMethodCash,
		Cashier:       "jane@butchery.local",
	}
}
