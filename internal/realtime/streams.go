package realtime

// Named realtime streams used across the platform.
const (
	StreamNotifications = "notifications"
	StreamBookings      = "bookings"
)

// Events emitted on the notifications stream.
const (
	EventNotificationCreated = "notification.created"
	EventNotificationRead    = "notification.read"
	EventNotificationReadAll = "notification.read_all"
)

// Events emitted on the bookings stream.
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)
