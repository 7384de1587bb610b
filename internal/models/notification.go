package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification represents a recipient-addressed in-app message derived from a
// marketplace activity. The read flag is the only mutable field: transitions
// are unread to read, monotonic, and idempotent.
type Notification struct {
	BaseModel

	RecipientID string  `gorm:"type:uuid;not null;index" json:"recipient_id"`
	SenderID    *string `gorm:"type:uuid" json:"sender_id,omitempty"`

	Title   string `gorm:"type:varchar(255);not null" json:"title"`
	Message string `gorm:"type:text" json:"message"`

	// RelatedType/RelatedID point at the triggering domain object, e.g. ("booking", bookingID).
	RelatedType string `gorm:"type:varchar(64)" json:"related_type,omitempty"`
	RelatedID   string `json:"related_id,omitempty"`

	ActionURL string         `gorm:"type:text" json:"action_url,omitempty"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}
