package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"butchery-pos-api/internal/middleware"
	"butchery-pos-api/internal/services"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	OrderService          services.OrderCapture
	SyncService           services.Synchronizer
	ReconciliationService services.Reconciler
	CacheService          services.CacheManager
	AuthService           *middleware.AuthService
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	// Create handlers
	orderHandler := NewOrderHandler(config.OrderService)
	syncHandler := NewSyncHandler(config.SyncService)
	reconciliationHandler := NewReconciliationHandler(config.ReconciliationService)
	cacheHandler := NewCacheHandler(config.CacheService)
	authHandler := NewAuthHandler(config.AuthService)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "butchery-pos-api",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (no auth required)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/validate", authHandler.ValidateToken)

			// Protected auth routes
			authProtected := auth.Group("")
			authProtected.Use(middleware.Authentication(config.AuthService))
			{
				authProtected.GET("/me", authHandler.GetCurrentUser)
			}
		}

		// Protected API routes
		api := v1.Group("")
		api.Use(middleware.Authentication(config.AuthService))
		{
			// Order capture routes
			orders := api.Group("/orders")
			{
				orders.POST("", orderHandler.CaptureOrder)
				orders.GET("/pending", orderHandler.ListPendingOrders)
			}

			// Synchronization
			api.POST("/sync", syncHandler.TriggerSync)
			api.GET("/storage/status", cacheHandler.GetStorageStatus)
			api.POST("/storage/prune", middleware.Authorization(string(middleware.RoleManager)), cacheHandler.PruneStorage)

			// Offline reference-data caches
			cache := api.Group("/cache")
			{
				cache.POST("/products", cacheHandler.RefreshProducts)
				cache.GET("/products", cacheHandler.ListCachedProducts)
				cache.POST("/customers", cacheHandler.RefreshCustomers)
				cache.GET("/customers", cacheHandler.ListCachedCustomers)
			}

			// End-of-day reconciliation. Closing the day is a manager action.
			reconciliations := api.Group("/reconciliations")
			{
				reconciliations.POST("", middleware.Authorization(string(middleware.RoleManager)), reconciliationHandler.CloseDay)
				reconciliations.GET("/today", reconciliationHandler.GetTodayReconciliation)
				reconciliations.GET("/preview", reconciliationHandler.PreviewDay)
			}
		}
	}
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine, authService *middleware.AuthService) {
	// Request ID and correlation ID
	router.Use(middleware.RequestID())
	router.Use(middleware.CorrelationID())

	// CORS
	router.Use(middleware.CORS())

	// Security headers
	router.Use(middleware.SecurityHeaders())

	// Request size limit (10MB)
	router.Use(middleware.RequestSizeLimit(10 * 1024 * 1024))

	// Content type validation for POST/PUT requests
	router.Use(middleware.ContentTypeValidation("application/json"))

	// Request validation
	router.Use(middleware.RequestValidation())

	// Rate limiting (100 requests per second, burst of 200)
	router.Use(middleware.RateLimiter(100, 200))

	// Structured logging
	router.Use(middleware.StructuredLogger())

	// Performance monitoring (log requests over 1 second)
	router.Use(middleware.PerformanceMonitor(time.Second))

	// Audit logging
	router.Use(middleware.AuditLogger())

	// Error tracking
	router.Use(middleware.ErrorTracker())

	// Enhanced error handling
	router.Use(middleware.EnhancedErrorHandler())
}

// SetupDevelopmentRoutes adds development-only routes
func SetupDevelopmentRoutes(router *gin.Engine, config *RouterConfig) {
	dev := router.Group("/dev")
	{
		// Generate demo token for testing
		dev.POST("/token", func(c *gin.Context) {
			token, err := config.AuthService.GenerateToken(
				"demo-user",
				"demo",
				"demo@butchery.local",
				[]string{string(middleware.RoleManager), string(middleware.RoleCashier)},
			)
			if err != nil {
				c.JSON(500, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"token": token})
		})

		// Configuration info
		dev.GET("/config", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"currency":    "KES",
				"api_version": "1.0.0",
				"swagger_url": "/swagger/index.html",
			})
		})
	}
}
