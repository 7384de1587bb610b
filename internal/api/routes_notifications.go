package api

import (
	"github.com/gin-gonic/gin"

	"github.com/tripdesk/tripdesk/internal/handlers"
)

// The websocket stream mounts outside the authenticated group because the
// token arrives as a query parameter and is validated by the handler itself.
func registerNotificationRoutes(r *gin.Engine, api *gin.RouterGroup, handler *handlers.NotificationHandler) {
	r.GET("/api/notifications/stream", handler.Stream)

	group := api.Group("/notifications")
	{
		group.GET("", handler.List)
		group.GET("/unread-count", handler.UnreadCount)
		group.POST("/:id/read", handler.MarkRead)
		group.POST("/read-all", handler.MarkAllRead)
	}
}
