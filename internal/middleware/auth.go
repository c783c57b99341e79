package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zekariasasaminew/campusEx/internal/repositories"
)

// AuthMiddleware validates the Authorization header against stored sessions
// and puts the authenticated user id on the request context.
func AuthMiddleware(sessions repositories.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization", "code": "not_authenticated"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header", "code": "not_authenticated"})
			return
		}

		userID, err := sessions.LookupSession(c.Request.Context(), parts[1])
		if errors.Is(err, repositories.ErrSessionNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "code": "not_authenticated"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to validate token", "code": "storage_error"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
