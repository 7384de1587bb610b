package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tripdesk/tripdesk/internal/models"
)

// ensureContext guards service entry points against nil contexts.
func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// adminIDs returns the ids of every active admin account.
func adminIDs(ctx context.Context, db *gorm.DB) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleAdmin, true).
		Pluck("id", &ids).Error
	return ids, err
}
