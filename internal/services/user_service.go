package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tripdesk/tripdesk/internal/activity"
	"github.com/tripdesk/tripdesk/internal/auditctx"
	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/models"
	"github.com/tripdesk/tripdesk/internal/notifications"
	"github.com/tripdesk/tripdesk/pkg/crypto"
	apperrors "github.com/tripdesk/tripdesk/pkg/errors"
)

// RegisterInput describes a new customer or agent account.
type RegisterInput struct {
	Email       string
	Password    string
	Name        string
	Role        string
	CompanyName string
}

// LoginResult bundles the issued token with the authenticated user.
type LoginResult struct {
	Token string
	User  *models.User
}

// UserService handles registration, login, and the admin agent
// approval console. Every state change is recorded in the activity trail
// first; recipient-facing notifications follow best-effort.
type UserService struct {
	db       *gorm.DB
	jwt      *auth.JWTService
	activity *activity.Logger
	notifier *notifications.Service
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, jwt *auth.JWTService, logger *activity.Logger, notifier *notifications.Service) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	if logger == nil {
		return nil, errors.New("user service: activity logger is required")
	}
	return &UserService{db: db, jwt: jwt, activity: logger, notifier: notifier}, nil
}

// Register creates a customer or agent account. Agents start in the pending
// state and cannot publish packages until an admin approves them.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewBadRequest("email and password are required")
	}

	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = models.RoleCustomer
	}
	if role != models.RoleCustomer && role != models.RoleAgent {
		return nil, apperrors.NewBadRequest("role must be customer or agent")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("user service: check email: %w", err)
	}
	if existing > 0 {
		return nil, apperrors.ErrConflict
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := models.User{
		Email:       email,
		Password:    hashed,
		Name:        strings.TrimSpace(input.Name),
		Role:        role,
		CompanyName: strings.TrimSpace(input.CompanyName),
		AgentStatus: models.AgentStatusApproved,
		IsActive:    true,
	}
	if role == models.RoleAgent {
		user.AgentStatus = models.AgentStatusPending
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	s.activity.LogRegistration(ctx, user.ID, user.Email, user.Role)

	// A pending agent needs a reviewer; tell every admin, best-effort.
	if role == models.RoleAgent && s.notifier != nil {
		if admins, err := adminIDs(ctx, s.db); err == nil {
			for _, adminID := range admins {
				s.notifier.SendQuiet(ctx, notifications.SendInput{
					RecipientID: adminID,
					SenderID:    user.ID,
					Title:       "New agent awaiting approval",
					Message:     fmt.Sprintf("%s (%s) registered as a DMC agent", user.Name, user.CompanyName),
					RelatedType: "user",
					RelatedID:   user.ID,
					ActionURL:   "/admin/agents/" + user.ID,
				})
			}
		}
	}

	return &user, nil
}

// Login verifies credentials and issues a JWT access token. Logins are
// recorded in the audit trail but never produce a notification.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}

	if !user.IsActive || !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{UserID: user.ID, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("user service: issue token: %w", err)
	}

	now := time.Now().UTC()
	updates := map[string]any{"last_login_at": now}
	if actor, ok := auditctx.FromContext(ctx); ok && actor.IPAddress != "" {
		updates["last_login_ip"] = actor.IPAddress
	}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("user service: record login: %w", err)
	}

	s.activity.LogLogin(ctx, user.ID, user.Email)

	return &LoginResult{Token: token, User: &user}, nil
}

// GetByID loads a single user.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// ListPendingAgents returns agent accounts awaiting review, oldest first.
func (s *UserService) ListPendingAgents(ctx context.Context) ([]models.User, error) {
	ctx = ensureContext(ctx)

	var agents []models.User
	if err := s.db.WithContext(ctx).
		Where("role = ? AND agent_status = ?", models.RoleAgent, models.AgentStatusPending).
		Order("created_at ASC").
		Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("user service: list pending agents: %w", err)
	}
	return agents, nil
}

// ApproveAgent marks a pending agent as approved and notifies them.
func (s *UserService) ApproveAgent(ctx context.Context, agentID, reviewerID string) (*models.User, error) {
	return s.reviewAgent(ctx, agentID, reviewerID, models.AgentStatusApproved, "")
}

// RejectAgent marks a pending agent as rejected and notifies them.
func (s *UserService) RejectAgent(ctx context.Context, agentID, reviewerID, reason string) (*models.User, error) {
	return s.reviewAgent(ctx, agentID, reviewerID, models.AgentStatusRejected, reason)
}

func (s *UserService) reviewAgent(ctx context.Context, agentID, reviewerID, status, reason string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var agent models.User
	if err := s.db.WithContext(ctx).
		Where("id = ? AND role = ?", agentID, models.RoleAgent).
		First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("user service: load agent: %w", err)
	}

	if agent.AgentStatus == status {
		return &agent, nil
	}

	if err := s.db.WithContext(ctx).Model(&agent).Update("agent_status", status).Error; err != nil {
		return nil, fmt.Errorf("user service: update agent status: %w", err)
	}
	agent.AgentStatus = status

	// Log first, notify second; the dual write is intentionally non-atomic.
	var title, message string
	if status == models.AgentStatusApproved {
		s.activity.LogAgentApproved(ctx, agent.ID, reviewerID)
		title = "Your agent account is approved"
		message = "You can now publish travel packages on TripDesk."
	} else {
		s.activity.LogAgentRejected(ctx, agent.ID, reviewerID, reason)
		title = "Your agent application was rejected"
		message = reason
	}

	if s.notifier != nil {
		s.notifier.SendQuiet(ctx, notifications.SendInput{
			RecipientID: agent.ID,
			SenderID:    reviewerID,
			Title:       title,
			Message:     message,
			RelatedType: "user",
			RelatedID:   agent.ID,
			ActionURL:   "/dashboard",
		})
	}

	return &agent, nil
}
