package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tripdesk/tripdesk/internal/models"
	apperrors "github.com/tripdesk/tripdesk/pkg/errors"
)

func newPackageService(t *testing.T, env testEnv) *PackageService {
	t.Helper()

	svc, err := NewPackageService(env.db, env.activity, env.notifier)
	require.NoError(t, err)
	return svc
}

func TestPackageServiceCreateRequiresApprovedAgent(t *testing.T) {
	env := newTestEnv(t)
	svc := newPackageService(t, env)
	pending := createUser(t, env.db, "pending@example.com", models.RoleAgent, models.AgentStatusPending)

	_, err := svc.Create(context.Background(), CreatePackageInput{
		AgentID: pending.ID,
		Title:   "Bali Escape",
		Price:   259900,
	})
	require.ErrorIs(t, err, apperrors.ErrAgentNotApproved)

	customer := createUser(t, env.db, "customer@example.com", models.RoleCustomer, models.AgentStatusApproved)
	_, err = svc.Create(context.Background(), CreatePackageInput{AgentID: customer.ID, Title: "X", Price: 1})
	require.ErrorIs(t, err, apperrors.ErrAgentNotApproved)
}

func TestPackageServiceCreateStartsPendingAndNotifiesAdmins(t *testing.T) {
	env := newTestEnv(t)
	svc := newPackageService(t, env)
	admin := createUser(t, env.db, "admin@tripdesk.local", models.RoleAdmin, models.AgentStatusApproved)
	agent := createUser(t, env.db, "agent@example.com", models.RoleAgent, models.AgentStatusApproved)

	pkg, err := svc.Create(context.Background(), CreatePackageInput{
		AgentID:      agent.ID,
		Title:        "  Bali Escape  ",
		Destination:  "Bali",
		DurationDays: 5,
		Price:        259900,
	})
	require.NoError(t, err)
	require.Equal(t, "Bali Escape", pkg.Title)
	require.Equal(t, models.PackageStatusPending, pkg.Status)
	require.False(t, pkg.IsBookable())

	require.Equal(t, []string{"package_created"}, activityTypes(t, env.db))

	inbox := notificationsFor(t, env.db, admin.ID)
	require.Len(t, inbox, 1)
	require.Equal(t, "Package awaiting review", inbox[0].Title)
	require.Equal(t, "package", inbox[0].RelatedType)
	require.Equal(t, pkg.ID, inbox[0].RelatedID)
}

func TestPackageServiceCreateValidatesInput(t *testing.T) {
	env := newTestEnv(t)
	svc := newPackageService(t, env)
	agent := createUser(t, env.db, "agent@example.com", models.RoleAgent, models.AgentStatusApproved)

	_, err := svc.Create(context.Background(), CreatePackageInput{AgentID: agent.ID, Price: 100})
	require.Error(t, err)

	_, err = svc.Create(context.Background(), CreatePackageInput{AgentID: agent.ID, Title: "Free trip", Price: 0})
	require.Error(t, err)
}

func TestPackageServiceApproveMakesPackageBookable(t *testing.T) {
	env := newTestEnv(t)
	svc := newPackageService(t, env)
	admin := createUser(t, env.db, "admin@tripdesk.local", models.RoleAdmin, models.AgentStatusApproved)
	agent := createUser(t, env.db, "agent@example.com", models.RoleAgent, models.AgentStatusApproved)

	pkg, err := svc.Create(context.Background(), CreatePackageInput{AgentID: agent.ID, Title: "Bali Escape", Price: 259900})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), pkg.ID, admin.ID)
	require.NoError(t, err)
	require.True(t, approved.IsBookable())
	require.NotNil(t, approved.ReviewedByID)
	require.Equal(t, admin.ID, *approved.ReviewedByID)

	inbox := notificationsFor(t, env.db, agent.ID)
	require.Len(t, inbox, 1)
	require.Equal(t, "Package approved", inbox[0].Title)

	// A second approval changes nothing and sends nothing.
	_, err = svc.Approve(context.Background(), pkg.ID, admin.ID)
	require.NoError(t, err)
	require.Len(t, notificationsFor(t, env.db, agent.ID), 1)
}

func TestPackageServiceRejectRecordsNote(t *testing.T) {
	env := newTestEnv(t)
	svc := newPackageService(t, env)
	admin := createUser(t, env.db, "admin@tripdesk.local", models.RoleAdmin, models.AgentStatusApproved)
	agent := createUser(t, env.db, "agent@example.com", models.RoleAgent, models.AgentStatusApproved)

	pkg, err := svc.Create(context.Background(), CreatePackageInput{AgentID: agent.ID, Title: "Bali Escape", Price: 259900})
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), pkg.ID, admin.ID, "Pricing looks wrong")
	require.NoError(t, err)
	require.Equal(t, models.PackageStatusRejected, rejected.Status)
	require.Equal(t, "Pricing looks wrong", rejected.ReviewNote)

	types := activityTypes(t, env.db)
	require.Equal(t, "package_rejected", types[len(types)-1])
}

func TestPackageServiceListFilters(t *testing.T) {
	env := newTestEnv(t)
	svc := newPackageService(t, env)
	agent := createUser(t, env.db, "agent@example.com", models.RoleAgent, models.AgentStatusApproved)

	createApprovedPackage(t, env.db, agent.ID, 100000)
	pending := models.TravelPackage{AgentID: agent.ID, Title: "Kyoto Walk", Destination: "Kyoto", Price: 90000, Status: models.PackageStatusPending}
	require.NoError(t, env.db.Create(&pending).Error)

	approvedOnly, total, err := svc.List(context.Background(), ListPackagesInput{Status: models.PackageStatusApproved})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, approvedOnly, 1)
	require.Equal(t, "Bali Escape", approvedOnly[0].Title)

	byDestination, total, err := svc.List(context.Background(), ListPackagesInput{Destination: "kyo"})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Kyoto Walk", byDestination[0].Title)
}

func TestPackageServiceGetByIDPreloadsAgent(t *testing.T) {
	env := newTestEnv(t)
	svc := newPackageService(t, env)
	agent := createUser(t, env.db, "agent@example.com", models.RoleAgent, models.AgentStatusApproved)
	pkg := createApprovedPackage(t, env.db, agent.ID, 100000)

	loaded, err := svc.GetByID(context.Background(), pkg.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Agent)
	require.Equal(t, agent.ID, loaded.Agent.ID)

	_, err = svc.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
