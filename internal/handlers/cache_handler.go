package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"butchery-pos-api/internal/services"
)

// CacheHandler handles offline reference-data cache HTTP requests
type CacheHandler struct {
	cache services.CacheManager
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(cache services.CacheManager) *CacheHandler {
	return &CacheHandler{
		cache: cache,
	}
}

// RefreshResponse reports how many records a cache refresh pulled down
type RefreshResponse struct {
	Refreshed int `json:"refreshed"`
}

// CachedListResponse wraps a cached snapshot
type CachedListResponse struct {
	Count int         `json:"count"`
	Items interface{} `json:"items"`
}

// @Summary Refresh the product cache
// @Description Pull the current product catalog from the remote store into the local snapshot used for offline browsing
// @Tags cache
// @Produce json
// @Security BearerAuth
// @Success 200 {object} RefreshResponse
// @Failure 502 {object} ErrorResponse
// @Router /cache/products [post]
func (h *CacheHandler) RefreshProducts(c *gin.Context) {
	count, err := h.cache.RefreshProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "Failed to refresh product cache",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{Refreshed: count})
}

// @Summary List cached products
// @Description List the local product snapshot. Served from disk, available during a partition.
// @Tags cache
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CachedListResponse
// @Failure 500 {object} ErrorResponse
// @Router /cache/products [get]
func (h *CacheHandler) ListCachedProducts(c *gin.Context) {
	products, err := h.cache.CachedProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to read product cache",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, CachedListResponse{Count: len(products), Items: products})
}

// @Summary Refresh the customer cache
// @Description Pull the current customer list from the remote store into the local snapshot
// @Tags cache
// @Produce json
// @Security BearerAuth
// @Success 200 {object} RefreshResponse
// @Failure 502 {object} ErrorResponse
// @Router /cache/customers [post]
func (h *CacheHandler) RefreshCustomers(c *gin.Context) {
	count, err := h.cache.RefreshCustomers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "Failed to refresh customer cache",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, RefreshResponse{Refreshed: count})
}

// @Summary List cached customers
// @Tags cache
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CachedListResponse
// @Failure 500 {object} ErrorResponse
// @Router /cache/customers [get]
func (h *CacheHandler) ListCachedCustomers(c *gin.Context) {
	customers, err := h.cache.CachedCustomers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to read customer cache",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, CachedListResponse{Count: len(customers), Items: customers})
}

// PruneResponse reports how many synced records a prune removed
type PruneResponse struct {
	Pruned        int64 `json:"pruned"`
	RetentionDays int   `json:"retention_days"`
}

// @Summary Prune synced order history
// @Description Delete synced pending-order records older than the retention window. Unsynced orders are never touched.
// @Tags storage
// @Produce json
// @Security BearerAuth
// @Param days query int false "Retention window in days, defaults to 7"
// @Success 200 {object} PruneResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /storage/prune [post]
func (h *CacheHandler) PruneStorage(c *gin.Context) {
	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid retention window",
				Message: "days must be a non-negative integer",
			})
			return
		}
		days = parsed
	}

	pruned, err := h.cache.PruneSyncedOrders(c.Request.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to prune storage",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, PruneResponse{Pruned: pruned, RetentionDays: days})
}

// @Summary Get local storage status
// @Description Report pending order count, cache sizes, sync queue depth and the current connectivity state
// @Tags storage
// @Produce json
// @Security BearerAuth
// @Success 200 {object} repositories.StorageInfo
// @Failure 500 {object} ErrorResponse
// @Router /storage/status [get]
func (h *CacheHandler) GetStorageStatus(c *gin.Context) {
	status, err := h.cache.StorageStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to read storage status",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, status)
}
