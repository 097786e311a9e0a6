package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func RequireJSON() gin.HandlerFunc {
	return requireContentType("application/json", "Content-Type must be application/json")
}

// RequireMultipart guards the photo upload route.
func RequireMultipart() gin.HandlerFunc {
	return requireContentType("multipart/form-data", "Content-Type must be multipart/form-data")
}

func requireContentType(prefix, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			ct := c.GetHeader("Content-Type")
			// allow parameters such as "; charset=utf-8" or "; boundary=..."
			if ct == "" || !strings.HasPrefix(strings.ToLower(ct), prefix) {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
					"error": gin.H{
						"code":    "unsupported_media_type",
						"message": msg,
					},
				})
				return
			}
		}
		c.Next()
	}
}
