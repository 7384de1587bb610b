package api

import (
	"github.com/gin-gonic/gin"

	"github.com/tripdesk/tripdesk/internal/handlers"
	"github.com/tripdesk/tripdesk/internal/middleware"
	"github.com/tripdesk/tripdesk/internal/models"
)

func registerPackageRoutes(api *gin.RouterGroup, handler *handlers.PackageHandler) {
	group := api.Group("/packages")
	{
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.POST("", middleware.RequireRole(models.RoleAgent), handler.Create)
		group.POST("/:id/approve", middleware.RequireAdmin(), handler.Approve)
		group.POST("/:id/reject", middleware.RequireAdmin(), handler.Reject)
	}
}
