package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok {
			abortUnauthorized(c, "Missing identity context")
			return
		}
		if role != required {
			reqID, _ := c.Get(CtxRequestID)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":      "forbidden",
					"message":   "You do not have access to this resource",
					"requestId": reqID,
				},
			})
			return
		}
		c.Next()
	}
}
