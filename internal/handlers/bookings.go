package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tripdesk/tripdesk/internal/middleware"
	"github.com/tripdesk/tripdesk/internal/models"
	"github.com/tripdesk/tripdesk/internal/services"
	"github.com/tripdesk/tripdesk/pkg/response"
)

// BookingHandler exposes the booking lifecycle endpoints.
type BookingHandler struct {
	bookings *services.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create reserves a package for the authenticated customer.
func (h *BookingHandler) Create(c *gin.Context) {
	var req struct {
		PackageID  string    `json:"package_id" validate:"required"`
		Travelers  int       `json:"travelers" validate:"omitempty,min=1"`
		TravelDate time.Time `json:"travel_date" validate:"required,future"`
	}

	if !bindAndValidate(c, &req) {
		return
	}

	booking, err := h.bookings.Create(requestContext(c), services.CreateBookingInput{
		PackageID:  req.PackageID,
		CustomerID: c.GetString(middleware.CtxUserIDKey),
		Travelers:  req.Travelers,
		TravelDate: req.TravelDate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, booking)
}

// Get returns a booking visible to its customer or agent.
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookings.GetByID(requestContext(c), c.Param("id"), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, booking)
}

// List returns the caller's bookings. Agents see bookings against their
// packages, everyone else sees their own reservations.
func (h *BookingHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	role := c.GetString(middleware.CtxRoleKey)

	var (
		bookings []models.Booking
		err      error
	)
	if role == models.RoleAgent {
		bookings, err = h.bookings.ListForAgent(requestContext(c), userID)
	} else {
		bookings, err = h.bookings.ListForCustomer(requestContext(c), userID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": bookings})
}

// Confirm transitions a pending booking to confirmed. Agent only.
func (h *BookingHandler) Confirm(c *gin.Context) {
	booking, err := h.bookings.Confirm(requestContext(c), c.Param("id"), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, booking)
}

// Cancel cancels a booking on behalf of its customer or agent.
func (h *BookingHandler) Cancel(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	booking, err := h.bookings.Cancel(requestContext(c), c.Param("id"), c.GetString(middleware.CtxUserIDKey), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, booking)
}
