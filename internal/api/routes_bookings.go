package api

import (
	"github.com/gin-gonic/gin"

	"github.com/tripdesk/tripdesk/internal/handlers"
	"github.com/tripdesk/tripdesk/internal/middleware"
	"github.com/tripdesk/tripdesk/internal/models"
)

func registerBookingRoutes(api *gin.RouterGroup, handler *handlers.BookingHandler) {
	group := api.Group("/bookings")
	{
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.POST("", middleware.RequireRole(models.RoleCustomer), handler.Create)
		group.POST("/:id/confirm", middleware.RequireRole(models.RoleAgent), handler.Confirm)
		group.POST("/:id/cancel", handler.Cancel)
	}
}
