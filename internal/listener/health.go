package listener

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (l *Listener) HealthHandler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	// liveness: process is up
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// readiness: subscribed and not shutting down
	r.GET("/readyz", func(ctx *gin.Context) {
		if !l.Ready() {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"received": l.Received(),
		})
	})

	return r
}
