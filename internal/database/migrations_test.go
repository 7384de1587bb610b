package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tripdesk/tripdesk/internal/models"
)

func TestAutoMigrateAndSeedCreatesDefaultAdmin(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrateAndSeed(db))

	var admin models.User
	require.NoError(t, db.Where("role = ?", models.RoleAdmin).First(&admin).Error)
	require.Equal(t, "admin@tripdesk.local", admin.Email)
	require.True(t, admin.IsActive)

	// Seeding again must not create a second admin.
	require.NoError(t, SeedData(db))
	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}
