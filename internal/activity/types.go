package activity

// Type enumerates the recorded activity kinds. The string values are part of
// the stored audit schema and must never be renamed.
type Type string

const (
	TypeRegistration     Type = "registration"
	TypeLogin            Type = "login"
	TypePackageCreated   Type = "package_created"
	TypePackageApproved  Type = "package_approved"
	TypePackageRejected  Type = "package_rejected"
	TypeBookingCreated   Type = "booking_created"
	TypeBookingConfirmed Type = "booking_confirmed"
	TypeBookingCancelled Type = "booking_cancelled"
	TypeAgentApproved    Type = "agent_approved"
	TypeAgentRejected    Type = "agent_rejected"
	TypeMessageSent      Type = "message_sent"
)

// Metadata is the tagged union of per-type payload shapes. Each activity type
// carries exactly one variant; evolving a shape means adding fields, never
// renaming or removing them, so downstream audit consumers stay compatible.
type Metadata interface {
	ActivityType() Type
}

// RegistrationMetadata accompanies TypeRegistration.
type RegistrationMetadata struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

func (RegistrationMetadata) ActivityType() Type { return TypeRegistration }

// LoginMetadata accompanies TypeLogin.
type LoginMetadata struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func (LoginMetadata) ActivityType() Type { return TypeLogin }

// PackageCreatedMetadata accompanies TypePackageCreated.
type PackageCreatedMetadata struct {
	PackageID string `json:"package_id"`
	AgentID   string `json:"agent_id"`
	Title     string `json:"title"`
}

func (PackageCreatedMetadata) ActivityType() Type { return TypePackageCreated }

// PackageApprovedMetadata accompanies TypePackageApproved.
type PackageApprovedMetadata struct {
	PackageID  string `json:"package_id"`
	AgentID    string `json:"agent_id"`
	ReviewerID string `json:"reviewer_id"`
}

func (PackageApprovedMetadata) ActivityType() Type { return TypePackageApproved }

// PackageRejectedMetadata accompanies TypePackageRejected.
type PackageRejectedMetadata struct {
	PackageID  string `json:"package_id"`
	AgentID    string `json:"agent_id"`
	ReviewerID string `json:"reviewer_id"`
	Reason     string `json:"reason,omitempty"`
}

func (PackageRejectedMetadata) ActivityType() Type { return TypePackageRejected }

// BookingCreatedMetadata accompanies TypeBookingCreated.
type BookingCreatedMetadata struct {
	BookingID  string `json:"booking_id"`
	PackageID  string `json:"package_id"`
	CustomerID string `json:"customer_id"`
	AgentID    string `json:"agent_id"`
	Amount     int64  `json:"amount"`
}

func (BookingCreatedMetadata) ActivityType() Type { return TypeBookingCreated }

// BookingConfirmedMetadata accompanies TypeBookingConfirmed.
type BookingConfirmedMetadata struct {
	BookingID  string `json:"booking_id"`
	CustomerID string `json:"customer_id"`
	AgentID    string `json:"agent_id"`
}

func (BookingConfirmedMetadata) ActivityType() Type { return TypeBookingConfirmed }

// BookingCancelledMetadata accompanies TypeBookingCancelled.
type BookingCancelledMetadata struct {
	BookingID   string `json:"booking_id"`
	CancelledBy string `json:"cancelled_by"`
	Reason      string `json:"reason,omitempty"`
}

func (BookingCancelledMetadata) ActivityType() Type { return TypeBookingCancelled }

// AgentApprovedMetadata accompanies TypeAgentApproved.
type AgentApprovedMetadata struct {
	AgentID    string `json:"agent_id"`
	ReviewerID string `json:"reviewer_id"`
}

func (AgentApprovedMetadata) ActivityType() Type { return TypeAgentApproved }

// AgentRejectedMetadata accompanies TypeAgentRejected.
type AgentRejectedMetadata struct {
	AgentID    string `json:"agent_id"`
	ReviewerID string `json:"reviewer_id"`
	Reason     string `json:"reason,omitempty"`
}

func (AgentRejectedMetadata) ActivityType() Type { return TypeAgentRejected }

// MessageSentMetadata accompanies TypeMessageSent.
type MessageSentMetadata struct {
	SenderID    string `json:"sender_id"`
	RecipientID string `json:"recipient_id"`
	Subject     string `json:"subject,omitempty"`
}

func (MessageSentMetadata) ActivityType() Type { return TypeMessageSent }
