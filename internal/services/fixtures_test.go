package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tripdesk/tripdesk/internal/activity"
	"github.com/tripdesk/tripdesk/internal/database/testutil"
	"github.com/tripdesk/tripdesk/internal/models"
	"github.com/tripdesk/tripdesk/internal/notifications"
	"github.com/tripdesk/tripdesk/pkg/crypto"
)

type testEnv struct {
	db       *gorm.DB
	activity *activity.Logger
	notifier *notifications.Service
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	activityLogger, err := activity.NewLogger(db)
	require.NoError(t, err)

	notifier, err := notifications.NewService(db, nil)
	require.NoError(t, err)

	return testEnv{db: db, activity: activityLogger, notifier: notifier}
}

func createUser(t *testing.T, db *gorm.DB, email, role, agentStatus string) models.User {
	t.Helper()

	hashed, err := crypto.HashPassword("secret123!")
	require.NoError(t, err)

	user := models.User{
		Email:       email,
		Password:    hashed,
		Name:        "Test " + role,
		Role:        role,
		AgentStatus: agentStatus,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createApprovedPackage(t *testing.T, db *gorm.DB, agentID string, price int64) models.TravelPackage {
	t.Helper()

	pkg := models.TravelPackage{
		AgentID:      agentID,
		Title:        "Bali Escape",
		Destination:  "Bali",
		DurationDays: 5,
		Price:        price,
		Status:       models.PackageStatusApproved,
	}
	require.NoError(t, db.Create(&pkg).Error)
	return pkg
}

func activityTypes(t *testing.T, db *gorm.DB) []string {
	t.Helper()

	var types []string
	require.NoError(t, db.Model(&models.ActivityRecord{}).
		Order("created_at ASC").
		Pluck("activity_type", &types).Error)
	return types
}

func notificationsFor(t *testing.T, db *gorm.DB, recipientID string) []models.Notification {
	t.Helper()

	var items []models.Notification
	require.NoError(t, db.
		Where("recipient_id = ?", recipientID).
		Order("created_at ASC").
		Find(&items).Error)
	return items
}
