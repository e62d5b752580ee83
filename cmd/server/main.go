package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"butchery-pos-api/internal/config"
	"butchery-pos-api/internal/handlers"
	"butchery-pos-api/pkg/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logrus.StandardLogger()
	if cfg.Environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize dependencies
	container, err := server.NewContainer(cfg, logger)
	if err != nil {
		logrus.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Close()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())

	routerConfig := &handlers.RouterConfig{
		OrderService:          container.OrderService,
		SyncService:           container.SyncService,
		ReconciliationService: container.ReconciliationService,
		CacheService:          container.CacheService,
		AuthService:           container.AuthService,
	}

	handlers.SetupMiddleware(router, container.AuthService)
	handlers.SetupRoutes(router, routerConfig)

	if cfg.Environment != "production" {
		handlers.SetupDevelopmentRoutes(router, routerConfig)
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"remote":      cfg.Remote.BaseURL,
		"online":      container.Monitor.IsOnline(),
	}).Info("Server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
