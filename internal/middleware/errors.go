package middleware

import (
	"net/http"

	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
)

func StatusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindUnauthenticated:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError writes {"error": kind, "message": text} for err and stops
// the handler chain. Internal details never reach the client.
func AbortWithError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(StatusFor(kind), gin.H{
		"error":   string(kind),
		"message": services.MessageOf(err),
	})
}
