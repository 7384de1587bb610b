package api

import (
	"github.com/gin-gonic/gin"

	"github.com/tripdesk/tripdesk/internal/handlers"
	"github.com/tripdesk/tripdesk/internal/middleware"
)

func registerActivityRoutes(api *gin.RouterGroup, handler *handlers.ActivityHandler) {
	group := api.Group("/activities")
	group.Use(middleware.RequireAdmin())
	{
		group.GET("", handler.List)
		group.GET("/export", handler.Export)
	}
}
