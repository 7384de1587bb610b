package models

import "time"

// Booking lifecycle states.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking records a customer's reservation against an approved travel package.
type Booking struct {
	BaseModel

	PackageID string         `gorm:"type:uuid;not null;index" json:"package_id"`
	Package   *TravelPackage `gorm:"foreignKey:PackageID" json:"package,omitempty"`

	CustomerID string `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer   *User  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	// AgentID is denormalised from the package so agent dashboards can query
	// bookings without a join.
	AgentID string `gorm:"type:uuid;not null;index" json:"agent_id"`

	Travelers  int       `gorm:"not null;default:1" json:"travelers"`
	TravelDate time.Time `json:"travel_date"`
	Amount     int64     `gorm:"not null" json:"amount"` // minor currency units

	Status      string     `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}
