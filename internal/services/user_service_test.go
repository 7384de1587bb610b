package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/models"
	apperrors "github.com/tripdesk/tripdesk/pkg/errors"
)

func newUserService(t *testing.T, env testEnv) *UserService {
	t.Helper()

	jwt, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "tripdesk"})
	require.NoError(t, err)

	svc, err := NewUserService(env.db, jwt, env.activity, env.notifier)
	require.NoError(t, err)
	return svc
}

func TestUserServiceRegisterCustomer(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(t, env)

	user, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Traveller@Example.com",
		Password: "secret123!",
		Name:     "Traveller",
	})
	require.NoError(t, err)
	require.Equal(t, "traveller@example.com", user.Email)
	require.Equal(t, models.RoleCustomer, user.Role)
	require.Equal(t, models.AgentStatusApproved, user.AgentStatus)

	require.Equal(t, []string{"registration"}, activityTypes(t, env.db))
}

func TestUserServiceRegisterAgentStartsPendingAndNotifiesAdmins(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(t, env)
	admin := createUser(t, env.db, "admin@tripdesk.local", models.RoleAdmin, models.AgentStatusApproved)

	agent, err := svc.Register(context.Background(), RegisterInput{
		Email:       "agent@example.com",
		Password:    "secret123!",
		Name:        "Agent",
		Role:        models.RoleAgent,
		CompanyName: "Bali DMC",
	})
	require.NoError(t, err)
	require.Equal(t, models.AgentStatusPending, agent.AgentStatus)
	require.False(t, agent.IsApprovedAgent())

	inbox := notificationsFor(t, env.db, admin.ID)
	require.Len(t, inbox, 1)
	require.Equal(t, "New agent awaiting approval", inbox[0].Title)
	require.False(t, inbox[0].IsRead)
}

func TestUserServiceRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(t, env)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "dup@example.com", Password: "secret123!", Name: "One"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Email: "dup@example.com", Password: "secret123!", Name: "Two"})
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserServiceRegisterValidatesRole(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(t, env)

	_, err := svc.Register(context.Background(), RegisterInput{Email: "x@example.com", Password: "secret123!", Role: "admin"})
	require.Error(t, err)
}

func TestUserServiceLoginIssuesToken(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(t, env)
	user := createUser(t, env.db, "login@example.com", models.RoleCustomer, models.AgentStatusApproved)

	result, err := svc.Login(context.Background(), "LOGIN@example.com", "secret123!")
	require.NoError(t, err)
	require.Equal(t, user.ID, result.User.ID)
	require.NotEmpty(t, result.Token)

	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, "id = ?", user.ID).Error)
	require.NotNil(t, reloaded.LastLoginAt)

	require.Equal(t, []string{"login"}, activityTypes(t, env.db))
	// Logins never notify anyone.
	require.Empty(t, notificationsFor(t, env.db, user.ID))
}

func TestUserServiceLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(t, env)
	createUser(t, env.db, "login@example.com", models.RoleCustomer, models.AgentStatusApproved)

	_, err := svc.Login(context.Background(), "login@example.com", "wrong password")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "missing@example.com", "secret123!")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserServiceLoginRejectsInactiveAccount(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(t, env)
	user := createUser(t, env.db, "inactive@example.com", models.RoleCustomer, models.AgentStatusApproved)
	require.NoError(t, env.db.Model(&user).Update("is_active", false).Error)

	_, err := svc.Login(context.Background(), "inactive@example.com", "secret123!")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestUserServiceApproveAgent(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(t, env)
	admin := createUser(t, env.db, "admin@tripdesk.local", models.RoleAdmin, models.AgentStatusApproved)
	agent := createUser(t, env.db, "agent@example.com", models.RoleAgent, models.AgentStatusPending)

	approved, err := svc.ApproveAgent(context.Background(), agent.ID, admin.ID)
	require.NoError(t, err)
	require.True(t, approved.IsApprovedAgent())

	require.Equal(t, []string{"agent_approved"}, activityTypes(t, env.db))

	inbox := notificationsFor(t, env.db, agent.ID)
	require.Len(t, inbox, 1)
	require.Equal(t, "Your agent account is approved", inbox[0].Title)

	// Re-approving an already approved agent is a no-op.
	_, err = svc.ApproveAgent(context.Background(), agent.ID, admin.ID)
	require.NoError(t, err)
	require.Len(t, notificationsFor(t, env.db, agent.ID), 1)
}

func TestUserServiceRejectAgentCarriesReason(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(t, env)
	admin := createUser(t, env.db, "admin@tripdesk.local", models.RoleAdmin, models.AgentStatusApproved)
	agent := createUser(t, env.db, "agent@example.com", models.RoleAgent, models.AgentStatusPending)

	rejected, err := svc.RejectAgent(context.Background(), agent.ID, admin.ID, "Missing business licence")
	require.NoError(t, err)
	require.Equal(t, models.AgentStatusRejected, rejected.AgentStatus)

	inbox := notificationsFor(t, env.db, agent.ID)
	require.Len(t, inbox, 1)
	require.Equal(t, "Missing business licence", inbox[0].Message)
}

func TestUserServiceListPendingAgents(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(t, env)
	createUser(t, env.db, "pending@example.com", models.RoleAgent, models.AgentStatusPending)
	createUser(t, env.db, "approved@example.com", models.RoleAgent, models.AgentStatusApproved)
	createUser(t, env.db, "customer@example.com", models.RoleCustomer, models.AgentStatusApproved)

	pending, err := svc.ListPendingAgents(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "pending@example.com", pending[0].Email)
}

func TestUserServiceReviewUnknownAgent(t *testing.T) {
	env := newTestEnv(t)
	svc := newUserService(t, env)
	admin := createUser(t, env.db, "admin@tripdesk.local", models.RoleAdmin, models.AgentStatusApproved)

	_, err := svc.ApproveAgent(context.Background(), "nope", admin.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
