package handlers

import (
	"net/http"

	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityService services.ActivityLogService
}

func NewActivityHandler(activityService services.ActivityLogService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) ListLogs(c *gin.Context) {
	filter := services.LogFilter{
		EntityType: queryEnum[models.EntityType](c, "entityType"),
		Action:     queryEnum[models.LogAction](c, "action"),
		Limit:      queryLimit(c),
	}
	logs, err := h.activityService.ListLogs(c.Request.Context(), middleware.ActorFrom(c), filter)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
