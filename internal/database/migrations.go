package database

import (
	"gorm.io/gorm"

	"github.com/tripdesk/tripdesk/internal/models"
	"github.com/tripdesk/tripdesk/pkg/crypto"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.TravelPackage{},
		&models.Booking{},
		&models.ActivityRecord{},
		&models.Notification{},
	)
}

// SeedData inserts the default admin account used to operate the
// approval console. The password is a placeholder and must be rotated on
// first login in any real deployment.
func SeedData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := crypto.HashPassword("changeme")
	if err != nil {
		return err
	}

	admin := models.User{
		Email:       "admin@tripdesk.local",
		Password:    hashed,
		Name:        "Super Admin",
		Role:        models.RoleAdmin,
		AgentStatus: models.AgentStatusApproved,
		IsActive:    true,
	}
	return db.Where(models.User{Email: admin.Email}).Attrs(admin).FirstOrCreate(&models.User{}).Error
}
