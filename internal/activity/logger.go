package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tripdesk/tripdesk/internal/auditctx"
	"github.com/tripdesk/tripdesk/internal/models"
	"github.com/tripdesk/tripdesk/pkg/logger"
	"github.com/tripdesk/tripdesk/pkg/metrics"
)

// Entry captures a single activity to persist. Type may be left zero when
// Metadata is set; it is then derived from the metadata variant.
type Entry struct {
	Type        Type
	Description string
	EntityType  string
	EntityID    string
	Metadata    Metadata
}

// Filters encapsulates optional filters when querying the activity trail.
type Filters struct {
	ActorID      string
	ActivityType string
	EntityType   string
	EntityID     string
	Since        *time.Time
	Until        *time.Time
}

// ListOptions controls pagination and filtering for activity queries.
type ListOptions struct {
	Page     int
	PageSize int
	Filters  Filters
}

// Logger persists activity records and serves the admin audit feed.
// It is constructed once at the composition root and injected into every
// service that records activities; there is no package-level instance.
//
// Log is best-effort by contract: a persistence failure is reported to the
// diagnostic log and the metrics counter, never to the caller. Audit logging
// must not be able to break a booking, approval, or registration flow.
type Logger struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewLogger constructs an activity Logger using the provided database handle.
func NewLogger(db *gorm.DB) (*Logger, error) {
	if db == nil {
		return nil, errors.New("activity: db is required")
	}
	return &Logger{db: db, log: logger.WithModule("activity")}, nil
}

// Log stores an activity entry. It never returns an error and never panics:
// invalid entries and store failures are diagnostic-only.
func (l *Logger) Log(ctx context.Context, entry Entry) {
	if ctx == nil {
		ctx = context.Background()
	}

	activityType := entry.Type
	if activityType == "" && entry.Metadata != nil {
		activityType = entry.Metadata.ActivityType()
	}
	if activityType == "" || strings.TrimSpace(entry.Description) == "" {
		l.log.Warn("dropping activity entry without type or description",
			zap.String("activity_type", string(activityType)))
		return
	}

	record := models.ActivityRecord{
		ActivityType: string(activityType),
		Description:  strings.TrimSpace(entry.Description),
		EntityType:   strings.TrimSpace(entry.EntityType),
		EntityID:     strings.TrimSpace(entry.EntityID),
	}

	if entry.Metadata != nil {
		payload, err := json.Marshal(entry.Metadata)
		if err != nil {
			// Metadata variants are plain structs; a marshal failure is a
			// programming error but still must not reach the caller.
			l.log.Warn("marshal activity metadata failed",
				zap.String("activity_type", string(activityType)), zap.Error(err))
		} else {
			record.Metadata = datatypes.JSON(payload)
		}
	}

	if actor, ok := auditctx.FromContext(ctx); ok {
		if id := strings.TrimSpace(actor.UserID); id != "" {
			record.ActorID = &id
		}
		record.IPAddress = actor.IPAddress
		record.UserAgent = actor.UserAgent
	}

	if err := l.db.WithContext(ctx).Create(&record).Error; err != nil {
		metrics.ActivityWrites.WithLabelValues(string(activityType), "error").Inc()
		l.log.Warn("activity write failed",
			zap.String("activity_type", string(activityType)), zap.Error(err))
		return
	}

	metrics.ActivityWrites.WithLabelValues(string(activityType), "ok").Inc()
}

// List returns paginated activity records ordered by creation time descending.
func (l *Logger) List(ctx context.Context, opts ListOptions) ([]models.ActivityRecord, int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	var (
		results []models.ActivityRecord
		total   int64
	)

	query := l.db.WithContext(ctx).Model(&models.ActivityRecord{})
	query = applyFilters(query, opts.Filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("activity: count records: %w", err)
	}

	if err := query.
		Preload("Actor").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("activity: list records: %w", err)
	}

	return results, total, nil
}

// Export returns activity records matching the provided filters without pagination.
func (l *Logger) Export(ctx context.Context, filters Filters) ([]models.ActivityRecord, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var records []models.ActivityRecord
	query := l.db.WithContext(ctx).Model(&models.ActivityRecord{})
	query = applyFilters(query, filters)

	if err := query.
		Preload("Actor").
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("activity: export records: %w", err)
	}

	return records, nil
}

// CleanupOlderThan removes activity records older than the supplied retention window (in days).
func (l *Logger) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if retentionDays <= 0 {
		return 0, errors.New("activity: retentionDays must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := l.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.ActivityRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("activity: cleanup records: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func applyFilters(query *gorm.DB, filters Filters) *gorm.DB {
	if filters.ActorID != "" {
		query = query.Where("actor_id = ?", filters.ActorID)
	}
	if filters.ActivityType != "" {
		query = query.Where("activity_type = ?", filters.ActivityType)
	}
	if filters.EntityType != "" {
		query = query.Where("entity_type = ?", filters.EntityType)
	}
	if filters.EntityID != "" {
		query = query.Where("entity_id = ?", filters.EntityID)
	}
	if filters.Since != nil {
		query = query.Where("created_at >= ?", *filters.Since)
	}
	if filters.Until != nil {
		query = query.Where("created_at <= ?", *filters.Until)
	}
	return query
}
