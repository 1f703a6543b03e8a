package handlers

import (
	"strconv"
	"strings"
	"time"

	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
)

const dateOnly = "2006-01-02"

func invalidRequest(message string) error {
	return &services.Error{Kind: services.KindValidation, Message: message}
}

func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		middleware.AbortWithError(c, &services.Error{
			Kind:    services.KindValidation,
			Message: "invalid request body",
			Err:     err,
		})
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.AbortWithError(c, invalidRequest("invalid task ID"))
		return 0, false
	}
	return id, true
}

// queryLimit returns 0 for a missing or malformed limit so the store
// default applies.
func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}

// queryEnum returns nil for an absent or empty parameter.
func queryEnum[T ~string](c *gin.Context, name string) *T {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	v := T(raw)
	return &v
}

// parseDueDate accepts RFC 3339 timestamps and bare dates (UTC midnight).
func parseDueDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateOnly, raw)
	if err != nil {
		return time.Time{}, invalidRequest("invalid due date")
	}
	return t, nil
}
