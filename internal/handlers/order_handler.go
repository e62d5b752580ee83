package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"butchery-pos-api/internal/middleware"
	"butchery-pos-api/internal/services"
)

// OrderHandler handles order capture HTTP requests
type OrderHandler struct {
	orders services.OrderCapture
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders services.OrderCapture) *OrderHandler {
	return &OrderHandler{
		orders: orders,
	}
}

// PendingOrdersResponse wraps the locally queued orders
type PendingOrdersResponse struct {
	Count  int         `json:"count"`
	Orders interface{} `json:"orders"`
}

// @Summary Capture an order
// @Description Capture a finalized sale. Writes to the remote store when reachable, otherwise queues the order locally for later synchronization. Returns 201 for a synced order and 202 for a queued one.
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order body services.CaptureOrderRequest true "Finalized sale"
// @Success 201 {object} services.CaptureResult
// @Success 202 {object} services.CaptureResult
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) CaptureOrder(c *gin.Context) {
	var req services.CaptureOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	// The till does not send the cashier; it rides on the token.
	if req.Cashier == "" {
		if _, username, email, _, ok := middleware.GetUserFromContext(c); ok {
			if email != "" {
				req.Cashier = email
			} else {
				req.Cashier = username
			}
		}
	}

	result, err := h.orders.Capture(c.Request.Context(), &req)
	if err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid order",
				Message: err.Error(),
			})
			return
		}
		if isRejectionError(err) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "Order rejected by remote store",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to capture order",
			Message: err.Error(),
		})
		return
	}

	if result.Queued {
		c.JSON(http.StatusAccepted, result)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary List pending orders
// @Description List orders captured during a partition that have not yet reached the remote store
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} PendingOrdersResponse
// @Failure 500 {object} ErrorResponse
// @Router /orders/pending [get]
func (h *OrderHandler) ListPendingOrders(c *gin.Context) {
	pending, err := h.orders.PendingOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list pending orders",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, PendingOrdersResponse{
		Count:  len(pending),
		Orders: pending,
	})
}
