package api

import (
	"github.com/gin-gonic/gin"

	"github.com/tripdesk/tripdesk/internal/handlers"
	"github.com/tripdesk/tripdesk/internal/middleware"
)

func registerAgentRoutes(api *gin.RouterGroup, handler *handlers.AgentHandler) {
	group := api.Group("/agents")
	group.Use(middleware.RequireAdmin())
	{
		group.GET("/pending", handler.ListPending)
		group.POST("/:id/approve", handler.Approve)
		group.POST("/:id/reject", handler.Reject)
	}
}
