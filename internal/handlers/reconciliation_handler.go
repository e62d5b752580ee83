package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"butchery-pos-api/internal/middleware"
	"butchery-pos-api/internal/models"
	"butchery-pos-api/internal/services"
)

// ReconciliationHandler handles end-of-day reconciliation HTTP requests
type ReconciliationHandler struct {
	reconciler services.Reconciler
}

// NewReconciliationHandler creates a new reconciliation handler
func NewReconciliationHandler(reconciler services.Reconciler) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciler: reconciler,
	}
}

// DayPreviewResponse carries the figures a manager reviews before counting the drawer
type DayPreviewResponse struct {
	Date         string                   `json:"date"`
	ExpectedCash float64                  `json:"expected_cash"`
	Breakdown    *models.PaymentBreakdown `json:"breakdown"`
}

// @Summary Close the day
// @Description Close the trading day against the operator's drawer count. A day closes exactly once; a second attempt is refused with 409.
// @Tags reconciliations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reconciliation body services.CloseDayRequest true "Drawer count"
// @Success 201 {object} models.ReconciliationRecord
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reconciliations [post]
func (h *ReconciliationHandler) CloseDay(c *gin.Context) {
	var req services.CloseDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Message: err.Error(),
		})
		return
	}

	if req.DateKey == "" {
		req.DateKey = models.DateKey(time.Now())
	}
	if req.ClosedBy == "" {
		if _, username, email, _, ok := middleware.GetUserFromContext(c); ok {
			if email != "" {
				req.ClosedBy = email
			} else {
				req.ClosedBy = username
			}
		}
	}

	record, err := h.reconciler.CloseDay(c.Request.Context(), &req)
	if err != nil {
		if isConflictError(err) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "Day already closed",
				Message: err.Error(),
			})
			return
		}
		if errors.Is(err, services.ErrEmptyDrawer) || isValidationError(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "Invalid reconciliation",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to close day",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// @Summary Get today's reconciliation
// @Description Return today's reconciliation record, or 404 while the day is still open
// @Tags reconciliations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ReconciliationRecord
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reconciliations/today [get]
func (h *ReconciliationHandler) GetTodayReconciliation(c *gin.Context) {
	record, err := h.reconciler.TodayReconciliation(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to load reconciliation",
			Message: err.Error(),
		})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Day still open",
			Message: "No reconciliation recorded for today",
		})
		return
	}

	c.JSON(http.StatusOK, record)
}

// @Summary Preview a day's figures
// @Description Compute the expected cash and payment breakdown for a date without closing it
// @Tags reconciliations
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date in YYYY-MM-DD format, defaults to today"
// @Success 200 {object} DayPreviewResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reconciliations/preview [get]
func (h *ReconciliationHandler) PreviewDay(c *gin.Context) {
	dateKey := c.Query("date")
	if dateKey == "" {
		dateKey = models.DateKey(time.Now())
	}
	if _, err := models.ParseDateKey(dateKey); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid date",
			Message: err.Error(),
		})
		return
	}

	expected, err := h.reconciler.ComputeExpectedCash(c.Request.Context(), dateKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to compute expected cash",
			Message: err.Error(),
		})
		return
	}

	breakdown, err := h.reconciler.ComputePaymentBreakdown(c.Request.Context(), dateKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to compute payment breakdown",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, DayPreviewResponse{
		Date:         dateKey,
		ExpectedCash: expected,
		Breakdown:    breakdown,
	})
}
