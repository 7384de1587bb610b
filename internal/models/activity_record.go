package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActivityRecord is a single entry in the append-only audit trail. Records are
// never updated or deleted once written; retention cleanup is the only path
// that removes aged rows.
type ActivityRecord struct {
	ID           string  `gorm:"primaryKey;type:uuid" json:"id"`
	ActivityType string  `gorm:"type:varchar(64);not null;index" json:"activity_type"`
	Description  string  `gorm:"type:text;not null" json:"description"`
	ActorID      *string `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Actor        *User   `gorm:"foreignKey:ActorID" json:"actor,omitempty"`

	// EntityType/EntityID point at the affected domain object (relation only).
	EntityType string `gorm:"type:varchar(64);index" json:"entity_type,omitempty"`
	EntityID   string `gorm:"index" json:"entity_id,omitempty"`

	Metadata datatypes.JSON `json:"metadata,omitempty"`

	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (a *ActivityRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
