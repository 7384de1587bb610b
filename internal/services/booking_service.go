package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tripdesk/tripdesk/internal/activity"
	"github.com/tripdesk/tripdesk/internal/models"
	"github.com/tripdesk/tripdesk/internal/notifications"
	"github.com/tripdesk/tripdesk/internal/realtime"
	apperrors "github.com/tripdesk/tripdesk/pkg/errors"
)

// CreateBookingInput describes a new reservation request.
type CreateBookingInput struct {
	PackageID  string
	CustomerID string
	Travelers  int
	TravelDate time.Time
}

// BookingService manages the booking lifecycle: pending on creation,
// confirmed by the agent, cancellable by either party. Every transition is
// logged to the activity trail first and then notified best-effort.
type BookingService struct {
	db       *gorm.DB
	activity *activity.Logger
	notifier *notifications.Service
	hub      *realtime.Hub
}

// NewBookingService constructs a BookingService. The notifier and hub are
// optional; when absent the corresponding deliveries are skipped.
func NewBookingService(db *gorm.DB, logger *activity.Logger, notifier *notifications.Service, hub *realtime.Hub) (*BookingService, error) {
	if db == nil {
		return nil, errors.New("booking service: db is required")
	}
	if logger == nil {
		return nil, errors.New("booking service: activity logger is required")
	}
	return &BookingService{db: db, activity: logger, notifier: notifier, hub: hub}, nil
}

// broadcast pushes a booking lifecycle event to both parties on the bookings
// stream so open dashboards refresh without polling.
func (s *BookingService) broadcast(event string, booking *models.Booking) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToUsers(realtime.StreamBookings, []string{booking.CustomerID, booking.AgentID}, realtime.Message{
		Stream: realtime.StreamBookings,
		Event:  event,
		Data: map[string]any{
			"booking_id": booking.ID,
			"package_id": booking.PackageID,
			"status":     booking.Status,
		},
	})
}

// Create reserves an approved package for a customer. The booking amount is
// captured at creation time so later price edits never reprice it.
func (s *BookingService) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	ctx = ensureContext(ctx)

	var pkg models.TravelPackage
	if err := s.db.WithContext(ctx).Where("id = ?", input.PackageID).First(&pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("booking service: load package: %w", err)
	}
	if !pkg.IsBookable() {
		return nil, apperrors.ErrPackageNotBookable
	}

	travelers := input.Travelers
	if travelers <= 0 {
		travelers = 1
	}

	booking := models.Booking{
		PackageID:  pkg.ID,
		CustomerID: input.CustomerID,
		AgentID:    pkg.AgentID,
		Travelers:  travelers,
		TravelDate: input.TravelDate,
		Amount:     pkg.Price * int64(travelers),
		Status:     models.BookingStatusPending,
	}

	if err := s.db.WithContext(ctx).Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("booking service: create booking: %w", err)
	}

	s.activity.LogBookingCreated(ctx, booking.ID, pkg.ID, booking.CustomerID, pkg.AgentID, booking.Amount)
	s.broadcast(realtime.EventBookingCreated, &booking)

	if s.notifier != nil {
		s.notifier.SendQuiet(ctx, notifications.SendInput{
			RecipientID: pkg.AgentID,
			SenderID:    booking.CustomerID,
			Title:       "New booking received",
			Message:     fmt.Sprintf("A customer booked %q for %d traveler(s)", pkg.Title, travelers),
			RelatedType: "booking",
			RelatedID:   booking.ID,
			ActionURL:   "/dashboard/bookings/" + booking.ID,
		})
	}

	return &booking, nil
}

// Confirm transitions a pending booking to confirmed. Only the owning agent
// may confirm; confirming an already-confirmed booking is a no-op.
func (s *BookingService) Confirm(ctx context.Context, bookingID, agentID string) (*models.Booking, error) {
	ctx = ensureContext(ctx)

	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.AgentID != agentID {
		return nil, apperrors.ErrForbidden
	}
	if booking.Status == models.BookingStatusConfirmed {
		return booking, nil
	}
	if booking.Status != models.BookingStatusPending {
		return nil, apperrors.New("booking.not_pending", "Only pending bookings can be confirmed", 409)
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(booking).
		Updates(map[string]any{"status": models.BookingStatusConfirmed, "confirmed_at": now}).Error; err != nil {
		return nil, fmt.Errorf("booking service: confirm booking: %w", err)
	}
	booking.Status = models.BookingStatusConfirmed
	booking.ConfirmedAt = &now

	s.activity.LogBookingConfirmed(ctx, booking.ID, booking.CustomerID, booking.AgentID)
	s.broadcast(realtime.EventBookingConfirmed, booking)

	if s.notifier != nil {
		s.notifier.SendQuiet(ctx, notifications.SendInput{
			RecipientID: booking.CustomerID,
			SenderID:    agentID,
			Title:       "Booking confirmed",
			Message:     "Your booking has been confirmed by the agent.",
			RelatedType: "booking",
			RelatedID:   booking.ID,
			ActionURL:   "/bookings/" + booking.ID,
		})
	}

	return booking, nil
}

// Cancel transitions a booking to cancelled. The customer or the owning
// agent may cancel; the counterparty is notified.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actorID, reason string) (*models.Booking, error) {
	ctx = ensureContext(ctx)

	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actorID != booking.CustomerID && actorID != booking.AgentID {
		return nil, apperrors.ErrForbidden
	}
	if booking.Status == models.BookingStatusCancelled {
		return booking, nil
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(booking).
		Updates(map[string]any{"status": models.BookingStatusCancelled, "cancelled_at": now}).Error; err != nil {
		return nil, fmt.Errorf("booking service: cancel booking: %w", err)
	}
	booking.Status = models.BookingStatusCancelled
	booking.CancelledAt = &now

	s.activity.LogBookingCancelled(ctx, booking.ID, actorID, reason)
	s.broadcast(realtime.EventBookingCancelled, booking)

	recipient := booking.CustomerID
	if actorID == booking.CustomerID {
		recipient = booking.AgentID
	}

	if s.notifier != nil {
		s.notifier.SendQuiet(ctx, notifications.SendInput{
			RecipientID: recipient,
			SenderID:    actorID,
			Title:       "Booking cancelled",
			Message:     reason,
			RelatedType: "booking",
			RelatedID:   booking.ID,
			ActionURL:   "/bookings/" + booking.ID,
		})
	}

	return booking, nil
}

// GetByID loads a booking visible to the supplied actor.
func (s *BookingService) GetByID(ctx context.Context, bookingID, actorID string) (*models.Booking, error) {
	ctx = ensureContext(ctx)

	booking, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if actorID != booking.CustomerID && actorID != booking.AgentID {
		return nil, apperrors.ErrForbidden
	}
	return booking, nil
}

// ListForCustomer returns a customer's bookings, newest first.
func (s *BookingService) ListForCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	return s.list(ctx, "customer_id", customerID)
}

// ListForAgent returns the bookings against an agent's packages, newest first.
func (s *BookingService) ListForAgent(ctx context.Context, agentID string) ([]models.Booking, error) {
	return s.list(ctx, "agent_id", agentID)
}

func (s *BookingService) list(ctx context.Context, column, id string) ([]models.Booking, error) {
	ctx = ensureContext(ctx)

	var bookings []models.Booking
	if err := s.db.WithContext(ctx).
		Preload("Package").
		Where(column+" = ?", id).
		Order("created_at DESC").
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("booking service: list bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) load(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).Where("id = ?", bookingID).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("booking service: load booking: %w", err)
	}
	return &booking, nil
}
