package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/tripdesk/tripdesk/internal/activity"
	"github.com/tripdesk/tripdesk/internal/app"
	iauth "github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/handlers"
	"github.com/tripdesk/tripdesk/internal/middleware"
	"github.com/tripdesk/tripdesk/internal/notifications"
	"github.com/tripdesk/tripdesk/internal/realtime"
	"github.com/tripdesk/tripdesk/internal/services"
)

// Dependencies aggregates the shared services the router wires into handlers.
type Dependencies struct {
	DB            *gorm.DB
	Config        *app.Config
	JWT           *iauth.JWTService
	Hub           *realtime.Hub
	Activity      *activity.Logger
	Notifications *notifications.Service
	Users         *services.UserService
	Packages      *services.PackageService
	Bookings      *services.BookingService
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Hub == nil {
		return nil, fmt.Errorf("realtime hub must be provided")
	}
	if deps.Activity == nil {
		return nil, fmt.Errorf("activity logger must be provided")
	}
	if deps.Notifications == nil {
		return nil, fmt.Errorf("notification service must be provided")
	}
	if deps.Users == nil || deps.Packages == nil || deps.Bookings == nil {
		return nil, fmt.Errorf("domain services must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(100, time.Minute))

	registerHealthRoutes(r, deps.Config)

	if deps.Config.Monitoring.Prometheus.Enabled {
		endpoint := deps.Config.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(deps.Users)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	api := r.Group("/api")
	api.Use(middleware.Auth(deps.JWT))

	api.GET("/auth/me", authHandler.Me)

	registerNotificationRoutes(r, api, handlers.NewNotificationHandler(deps.Notifications, deps.Hub, deps.JWT))
	registerActivityRoutes(api, handlers.NewActivityHandler(deps.Activity))
	registerPackageRoutes(api, handlers.NewPackageHandler(deps.Packages))
	registerBookingRoutes(api, handlers.NewBookingHandler(deps.Bookings))
	registerAgentRoutes(api, handlers.NewAgentHandler(deps.Users))

	return r, nil
}
