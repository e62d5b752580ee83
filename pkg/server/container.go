package server

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"butchery-pos-api/internal/config"
	"butchery-pos-api/internal/middleware"
	"butchery-pos-api/internal/remote"
	"butchery-pos-api/internal/repositories/sqlite"
	"butchery-pos-api/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config                *config.Config
	OrderService          services.OrderCapture
	SyncService           *services.SyncEngine
	ReconciliationService services.Reconciler
	CacheService          services.CacheManager
	Monitor               *services.ConnectivityMonitor
	AuthService           *middleware.AuthService

	// Internal dependencies
	store     *sqlite.LocalStore
	remote    remote.Store
	logger    *logrus.Logger
	stopProbe context.CancelFunc
}

// ContainerOptions tweaks container construction
type ContainerOptions struct {
	// RemoteStore overrides the HTTP client, used by tests to inject a mock
	RemoteStore remote.Store

	// DisableProbing skips the background connectivity probe
	DisableProbing bool
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	return NewContainerWithOptions(cfg, logger, nil)
}

// NewContainerWithOptions creates a container with explicit options
func NewContainerWithOptions(cfg *config.Config, logger *logrus.Logger, opts *ContainerOptions) (*Container, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts == nil {
		opts = &ContainerOptions{}
	}

	store := sqlite.NewLocalStore(cfg.Database.Path, cfg.Database.MigrationsPath, logger)
	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	remoteStore := opts.RemoteStore
	if remoteStore == nil {
		remoteStore = remote.NewClient(remote.ClientConfig{
			BaseURL: cfg.Remote.BaseURL,
			APIKey:  cfg.Remote.APIKey,
			Timeout: cfg.Remote.Timeout,
		}, logger)
	}

	// The terminal assumes it is online until a request proves otherwise;
	// the startup probe corrects that assumption right away.
	monitor := services.NewConnectivityMonitor(true, remoteStore, logger)

	var retryConfig *remote.RetryConfig
	if cfg.Capture.RetryAttempts > 0 {
		retryConfig = remote.DefaultRetryConfig()
		retryConfig.MaxAttempts = cfg.Capture.RetryAttempts
	}

	orderService := services.NewOrderService(
		remoteStore,
		store.PendingOrders(),
		store.SyncQueue(),
		monitor,
		retryConfig,
		logger,
	)

	syncEngine := services.NewSyncEngine(
		remoteStore,
		store.PendingOrders(),
		store.SyncQueue(),
		monitor,
		logger,
	)
	syncEngine.BindMonitor()

	notifier := services.NewDayCloseNotifier(&services.SMTPConfig{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		Username:   cfg.SMTP.Username,
		Password:   cfg.SMTP.Password,
		FromEmail:  cfg.SMTP.From,
		FromName:   cfg.SMTP.FromName,
		Recipients: cfg.SMTP.Recipients,
	}, logger)

	reconciliationService := services.NewReconciliationService(remoteStore, notifier, logger)

	cacheService := services.NewCacheService(
		remoteStore,
		store.Products(),
		store.Customers(),
		store.PendingOrders(),
		store.SyncQueue(),
		monitor,
		logger,
	)

	authService := middleware.NewAuthService(&middleware.AuthConfig{
		JWTSecret:     cfg.JWT.Secret,
		TokenDuration: time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
	})

	container := &Container{
		Config:                cfg,
		OrderService:          orderService,
		SyncService:           syncEngine,
		ReconciliationService: reconciliationService,
		CacheService:          cacheService,
		Monitor:               monitor,
		AuthService:           authService,
		store:                 store,
		remote:                remoteStore,
		logger:                logger,
	}

	if !opts.DisableProbing {
		probeCtx, cancel := context.WithCancel(context.Background())
		container.stopProbe = cancel

		monitor.Probe(probeCtx)
		monitor.StartProbing(probeCtx, cfg.Remote.ProbeInterval)
	}

	return container, nil
}

// LocalStore exposes the durable local store, used by diagnostics
func (c *Container) LocalStore() *sqlite.LocalStore {
	return c.store
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.stopProbe != nil {
		c.stopProbe()
	}

	if c.store != nil {
		if err := c.store.Close(); err != nil {
			return fmt.Errorf("failed to close local store: %w", err)
		}
	}

	return nil
}
