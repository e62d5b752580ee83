package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"butchery-pos-api/internal/services"
)

// SyncHandler handles synchronization HTTP requests
type SyncHandler struct {
	sync services.Synchronizer
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(sync services.Synchronizer) *SyncHandler {
	return &SyncHandler{
		sync: sync,
	}
}

// @Summary Trigger a sync pass
// @Description Drain the local queue to the remote store. A trigger while offline or while a pass is already running is a recorded no-op, reported as skipped.
// @Tags sync
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.SyncReport
// @Failure 500 {object} ErrorResponse
// @Router /sync [post]
func (h *SyncHandler) TriggerSync(c *gin.Context) {
	report, err := h.sync.Synchronize(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Sync pass failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, report)
}
