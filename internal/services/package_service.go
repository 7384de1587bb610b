package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/tripdesk/tripdesk/internal/activity"
	"github.com/tripdesk/tripdesk/internal/models"
	"github.com/tripdesk/tripdesk/internal/notifications"
	apperrors "github.com/tripdesk/tripdesk/pkg/errors"
)

// CreatePackageInput describes a new travel package submission.
type CreatePackageInput struct {
	AgentID      string
	Title        string
	Description  string
	Destination  string
	DurationDays int
	Price        int64
}

// ListPackagesInput filters the package catalogue.
type ListPackagesInput struct {
	Status      string
	AgentID     string
	Destination string
	Page        int
	PageSize    int
}

// PackageService manages the travel package catalogue and its approval flow.
type PackageService struct {
	db       *gorm.DB
	activity *activity.Logger
	notifier *notifications.Service
}

// NewPackageService constructs a PackageService.
func NewPackageService(db *gorm.DB, logger *activity.Logger, notifier *notifications.Service) (*PackageService, error) {
	if db == nil {
		return nil, errors.New("package service: db is required")
	}
	if logger == nil {
		return nil, errors.New("package service: activity logger is required")
	}
	return &PackageService{db: db, activity: logger, notifier: notifier}, nil
}

// Create submits a new package for review. Only approved agents may submit.
func (s *PackageService) Create(ctx context.Context, input CreatePackageInput) (*models.TravelPackage, error) {
	ctx = ensureContext(ctx)

	var agent models.User
	if err := s.db.WithContext(ctx).Where("id = ?", input.AgentID).First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("package service: load agent: %w", err)
	}
	if !agent.IsApprovedAgent() {
		return nil, apperrors.ErrAgentNotApproved
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewBadRequest("title is required")
	}
	if input.Price <= 0 {
		return nil, apperrors.NewBadRequest("price must be positive")
	}

	pkg := models.TravelPackage{
		AgentID:      agent.ID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Destination:  strings.TrimSpace(input.Destination),
		DurationDays: input.DurationDays,
		Price:        input.Price,
		Status:       models.PackageStatusPending,
	}

	if err := s.db.WithContext(ctx).Create(&pkg).Error; err != nil {
		return nil, fmt.Errorf("package service: create package: %w", err)
	}

	s.activity.LogPackageCreated(ctx, pkg.ID, agent.ID, pkg.Title)

	if s.notifier != nil {
		if admins, err := adminIDs(ctx, s.db); err == nil {
			for _, adminID := range admins {
				s.notifier.SendQuiet(ctx, notifications.SendInput{
					RecipientID: adminID,
					SenderID:    agent.ID,
					Title:       "Package awaiting review",
					Message:     fmt.Sprintf("%q submitted by %s", pkg.Title, agent.Name),
					RelatedType: "package",
					RelatedID:   pkg.ID,
					ActionURL:   "/admin/packages/" + pkg.ID,
				})
			}
		}
	}

	return &pkg, nil
}

// Approve marks a pending package as approved and notifies the owning agent.
func (s *PackageService) Approve(ctx context.Context, packageID, reviewerID string) (*models.TravelPackage, error) {
	return s.review(ctx, packageID, reviewerID, models.PackageStatusApproved, "")
}

// Reject marks a pending package as rejected and notifies the owning agent.
func (s *PackageService) Reject(ctx context.Context, packageID, reviewerID, reason string) (*models.TravelPackage, error) {
	return s.review(ctx, packageID, reviewerID, models.PackageStatusRejected, reason)
}

func (s *PackageService) review(ctx context.Context, packageID, reviewerID, status, reason string) (*models.TravelPackage, error) {
	ctx = ensureContext(ctx)

	var pkg models.TravelPackage
	if err := s.db.WithContext(ctx).Where("id = ?", packageID).First(&pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("package service: load package: %w", err)
	}

	if pkg.Status == status {
		return &pkg, nil
	}

	updates := map[string]any{
		"status":         status,
		"review_note":    reason,
		"reviewed_by_id": reviewerID,
	}
	if err := s.db.WithContext(ctx).Model(&pkg).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("package service: update package: %w", err)
	}
	pkg.Status = status
	pkg.ReviewNote = reason
	pkg.ReviewedByID = &reviewerID

	var title, message string
	if status == models.PackageStatusApproved {
		s.activity.LogPackageApproved(ctx, pkg.ID, pkg.AgentID, reviewerID)
		title = "Package approved"
		message = fmt.Sprintf("%q is now live and open for bookings.", pkg.Title)
	} else {
		s.activity.LogPackageRejected(ctx, pkg.ID, pkg.AgentID, reviewerID, reason)
		title = "Package rejected"
		message = fmt.Sprintf("%q was rejected: %s", pkg.Title, reason)
	}

	if s.notifier != nil {
		s.notifier.SendQuiet(ctx, notifications.SendInput{
			RecipientID: pkg.AgentID,
			SenderID:    reviewerID,
			Title:       title,
			Message:     message,
			RelatedType: "package",
			RelatedID:   pkg.ID,
			ActionURL:   "/packages/" + pkg.ID,
		})
	}

	return &pkg, nil
}

// GetByID loads a single package.
func (s *PackageService) GetByID(ctx context.Context, id string) (*models.TravelPackage, error) {
	ctx = ensureContext(ctx)

	var pkg models.TravelPackage
	if err := s.db.WithContext(ctx).Preload("Agent").Where("id = ?", id).First(&pkg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("package service: load package: %w", err)
	}
	return &pkg, nil
}

// List returns packages matching the supplied filters, newest first.
func (s *PackageService) List(ctx context.Context, input ListPackagesInput) ([]models.TravelPackage, int64, error) {
	ctx = ensureContext(ctx)

	page := input.Page
	if page <= 0 {
		page = 1
	}
	perPage := input.PageSize
	if perPage <= 0 || perPage > 100 {
		perPage = 25
	}

	query := s.db.WithContext(ctx).Model(&models.TravelPackage{})
	if input.Status != "" {
		query = query.Where("status = ?", input.Status)
	}
	if input.AgentID != "" {
		query = query.Where("agent_id = ?", input.AgentID)
	}
	if input.Destination != "" {
		query = query.Where("destination LIKE ?", "%"+input.Destination+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("package service: count packages: %w", err)
	}

	var packages []models.TravelPackage
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&packages).Error; err != nil {
		return nil, 0, fmt.Errorf("package service: list packages: %w", err)
	}

	return packages, total, nil
}
