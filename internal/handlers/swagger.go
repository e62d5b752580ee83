package handlers

// @title Butchery POS API
// @version 1.0
// @description Offline-resilient point-of-sale backend for a butchery: order capture with durable local queueing, reconnection sync and end-of-day cash reconciliation
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/your-org/butchery-pos-api
// @contact.email support@butchery.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name orders
// @tag.description Order capture with offline fallback

// @tag.name sync
// @tag.description Local queue synchronization

// @tag.name reconciliations
// @tag.description End-of-day cash reconciliation

// @tag.name cache
// @tag.description Offline reference-data caches

// @tag.name storage
// @tag.description Local storage diagnostics

// @tag.name auth
// @tag.description Authentication operations
