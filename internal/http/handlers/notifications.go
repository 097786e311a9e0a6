package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/geocoder89/fuellog/internal/notifications"
	"github.com/gin-gonic/gin"
)

type NotificationSubscriber interface {
	Subscribe() (<-chan notifications.Notification, func())
}

type PermissionSource interface {
	Permission() notifications.Permission
}

type NotificationsHandler struct {
	hub       NotificationSubscriber
	perm      PermissionSource
	heartbeat time.Duration
}

func NewNotificationsHandler(hub NotificationSubscriber, perm PermissionSource, heartbeat time.Duration) *NotificationsHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &NotificationsHandler{hub: hub, perm: perm, heartbeat: heartbeat}
}

// Stream pushes every notification of this process as server-sent events.
// Delivery is local-device style: whoever is listening sees everything.
func (h *NotificationsHandler) Stream(ctx *gin.Context) {
	ch, cancel := h.hub.Subscribe()
	defer cancel()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")

	ctx.SSEvent("ready", gin.H{"permission": h.perm.Permission()})
	ctx.Writer.Flush()

	reqCtx := ctx.Request.Context()
	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-reqCtx.Done():
			return false
		case n, ok := <-ch:
			if !ok {
				return false
			}
			ctx.SSEvent("notification", n)
			return true
		case <-ticker.C:
			ctx.SSEvent("ping", time.Now().UTC().Unix())
			return true
		}
	})
}

func (h *NotificationsHandler) Permission(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"permission": h.perm.Permission()})
}
