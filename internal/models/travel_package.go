package models

// Travel package lifecycle states.
const (
	PackageStatusDraft    = "draft"
	PackageStatusPending  = "pending"
	PackageStatusApproved = "approved"
	PackageStatusRejected = "rejected"
)

// TravelPackage is a tour product owned by a DMC agent. Packages are listed
// for booking only after admin approval.
type TravelPackage struct {
	BaseModel

	AgentID string `gorm:"type:uuid;not null;index" json:"agent_id"`
	Agent   *User  `gorm:"foreignKey:AgentID" json:"agent,omitempty"`

	Title        string `gorm:"type:varchar(255);not null" json:"title"`
	Description  string `gorm:"type:text" json:"description"`
	Destination  string `gorm:"type:varchar(255);index" json:"destination"`
	DurationDays int    `json:"duration_days"`
	Price        int64  `gorm:"not null" json:"price"` // minor currency units

	Status       string  `gorm:"type:varchar(32);not null;default:'draft';index" json:"status"`
	ReviewNote   string  `gorm:"type:text" json:"review_note,omitempty"`
	ReviewedByID *string `gorm:"type:uuid" json:"reviewed_by_id,omitempty"`
}

// IsBookable reports whether customers may create bookings against the package.
func (p *TravelPackage) IsBookable() bool {
	return p.Status == PackageStatusApproved
}
