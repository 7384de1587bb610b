package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles recognised across the marketplace.
const (
	RoleCustomer = "customer"
	RoleAgent    = "agent"
	RoleAdmin    = "admin"
)

// Agent approval states. Customers and admins are always "approved".
const (
	AgentStatusPending  = "pending"
	AgentStatusApproved = "approved"
	AgentStatusRejected = "rejected"
)

// User describes a marketplace account: a travelling customer, a DMC agent,
// or an admin operating the approval console.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Name     string `gorm:"not null" json:"name"`
	Role     string `gorm:"type:varchar(32);not null;default:'customer';index" json:"role"`

	// CompanyName and AgentStatus are only meaningful for agent accounts.
	CompanyName string `json:"company_name,omitempty"`
	AgentStatus string `gorm:"type:varchar(32);default:'approved'" json:"agent_status,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	LastLoginAt *time.Time `json:"last_login_at"`
	LastLoginIP string     `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsApprovedAgent reports whether the user may publish and manage packages.
func (u *User) IsApprovedAgent() bool {
	return u.Role == RoleAgent && u.AgentStatus == AgentStatusApproved
}
