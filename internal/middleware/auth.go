package middleware

import (
	"strings"

	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// TokenParser turns a bearer token into the calling actor.
type TokenParser interface {
	ParseToken(token string) (models.Actor, error)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// Authenticate requires a valid bearer token and stores the actor in the
// gin context for ActorFrom.
func Authenticate(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			AbortWithError(c, &services.Error{
				Kind:    services.KindUnauthenticated,
				Message: "authorization header must use Bearer token",
			})
			return
		}

		actor, err := parser.ParseToken(token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		SetActor(c, actor)
		c.Next()
	}
}

func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorKey, actor)
}

// ActorFrom returns the actor set by Authenticate. The zero Actor is
// returned for unauthenticated requests, which every service rejects.
func ActorFrom(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{}
}

func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		AbortWithError(c, &services.Error{
			Kind:    services.KindForbidden,
			Message: "insufficient role for this resource",
		})
	}
}
