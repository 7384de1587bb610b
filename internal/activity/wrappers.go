package activity

import (
	"context"
	"fmt"
)

// The wrappers below are pure sugar over Log: each assembles the well-known
// description, entity pointer, and metadata variant for one activity type.

// LogRegistration records a new account registration.
func (l *Logger) LogRegistration(ctx context.Context, userID, email, role string) {
	l.Log(ctx, Entry{
		Description: fmt.Sprintf("New %s registered: %s", role, email),
		EntityType:  "user",
		EntityID:    userID,
		Metadata:    RegistrationMetadata{UserID: userID, Email: email, Role: role},
	})
}

// LogLogin records a successful login. Logins are audited but never notified.
func (l *Logger) LogLogin(ctx context.Context, userID, email string) {
	l.Log(ctx, Entry{
		Description: fmt.Sprintf("User logged in: %s", email),
		EntityType:  "user",
		EntityID:    userID,
		Metadata:    LoginMetadata{UserID: userID, Email: email},
	})
}

// LogPackageCreated records a new travel package submission.
func (l *Logger) LogPackageCreated(ctx context.Context, packageID, agentID, title string) {
	l.Log(ctx, Entry{
		Description: fmt.Sprintf("Package created: %s", title),
		EntityType:  "package",
		EntityID:    packageID,
		Metadata:    PackageCreatedMetadata{PackageID: packageID, AgentID: agentID, Title: title},
	})
}

// LogPackageApproved records an admin package approval.
func (l *Logger) LogPackageApproved(ctx context.Context, packageID, agentID, reviewerID string) {
	l.Log(ctx, Entry{
		Description: "Package approved",
		EntityType:  "package",
		EntityID:    packageID,
		Metadata:    PackageApprovedMetadata{PackageID: packageID, AgentID: agentID, ReviewerID: reviewerID},
	})
}

// LogPackageRejected records an admin package rejection.
func (l *Logger) LogPackageRejected(ctx context.Context, packageID, agentID, reviewerID, reason string) {
	l.Log(ctx, Entry{
		Description: "Package rejected",
		EntityType:  "package",
		EntityID:    packageID,
		Metadata:    PackageRejectedMetadata{PackageID: packageID, AgentID: agentID, ReviewerID: reviewerID, Reason: reason},
	})
}

// LogBookingCreated records a new booking.
func (l *Logger) LogBookingCreated(ctx context.Context, bookingID, packageID, customerID, agentID string, amount int64) {
	l.Log(ctx, Entry{
		Description: fmt.Sprintf("Booking created for package %s", packageID),
		EntityType:  "booking",
		EntityID:    bookingID,
		Metadata: BookingCreatedMetadata{
			BookingID:  bookingID,
			PackageID:  packageID,
			CustomerID: customerID,
			AgentID:    agentID,
			Amount:     amount,
		},
	})
}

// LogBookingConfirmed records an agent confirming a booking.
func (l *Logger) LogBookingConfirmed(ctx context.Context, bookingID, customerID, agentID string) {
	l.Log(ctx, Entry{
		Description: "Booking confirmed",
		EntityType:  "booking",
		EntityID:    bookingID,
		Metadata:    BookingConfirmedMetadata{BookingID: bookingID, CustomerID: customerID, AgentID: agentID},
	})
}

// LogBookingCancelled records a booking cancellation.
func (l *Logger) LogBookingCancelled(ctx context.Context, bookingID, cancelledBy, reason string) {
	l.Log(ctx, Entry{
		Description: "Booking cancelled",
		EntityType:  "booking",
		EntityID:    bookingID,
		Metadata:    BookingCancelledMetadata{BookingID: bookingID, CancelledBy: cancelledBy, Reason: reason},
	})
}

// LogAgentApproved records an admin approving a DMC agent account.
func (l *Logger) LogAgentApproved(ctx context.Context, agentID, reviewerID string) {
	l.Log(ctx, Entry{
		Description: "Agent approved",
		EntityType:  "user",
		EntityID:    agentID,
		Metadata:    AgentApprovedMetadata{AgentID: agentID, ReviewerID: reviewerID},
	})
}

// LogAgentRejected records an admin rejecting a DMC agent account.
func (l *Logger) LogAgentRejected(ctx context.Context, agentID, reviewerID, reason string) {
	l.Log(ctx, Entry{
		Description: "Agent rejected",
		EntityType:  "user",
		EntityID:    agentID,
		Metadata:    AgentRejectedMetadata{AgentID: agentID, ReviewerID: reviewerID, Reason: reason},
	})
}

// LogMessageSent records a direct message between a customer and an agent.
func (l *Logger) LogMessageSent(ctx context.Context, senderID, recipientID, subject string) {
	l.Log(ctx, Entry{
		Description: "Message sent",
		EntityType:  "message",
		Metadata:    MessageSentMetadata{SenderID: senderID, RecipientID: recipientID, Subject: subject},
	})
}
