package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tripdesk/tripdesk/internal/activity"
	"github.com/tripdesk/tripdesk/internal/models"
	"github.com/tripdesk/tripdesk/pkg/logger"
)

const (
	defaultActivityRetentionDays     = 180
	defaultNotificationRetentionDays = 90
	defaultActivitySpec              = "@daily"
	defaultNotificationSpec          = "@daily"
)

// Cleaner coordinates background maintenance tasks: pruning the activity
// trail past its retention window and removing old read notifications.
type Cleaner struct {
	db       *gorm.DB
	activity *activity.Logger
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger
	enabled  bool

	activityRetention     int
	notificationRetention int

	activitySchedule     string
	notificationSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithActivityRetentionDays adjusts how long activity records are retained.
func WithActivityRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.activityRetention = days
		}
	}
}

// WithNotificationRetentionDays adjusts how long read notifications are retained.
func WithNotificationRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.notificationRetention = days
		}
	}
}

// WithActivitySchedule overrides the cron specification for activity retention.
func WithActivitySchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.activitySchedule = spec
		}
	}
}

// WithNotificationSchedule overrides the cron specification for notification pruning.
func WithNotificationSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.notificationSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency
// results in the corresponding cleanup job being skipped.
func NewCleaner(db *gorm.DB, activityLogger *activity.Logger, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:                    db,
		activity:              activityLogger,
		now:                   time.Now,
		activityRetention:     defaultActivityRetentionDays,
		notificationRetention: defaultNotificationRetentionDays,
		activitySchedule:      defaultActivitySpec,
		notificationSchedule:  defaultNotificationSpec,
		log:                   logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.activity != nil || cleaner.db != nil

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at
// least one cleanup is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.activity != nil && c.activityRetention > 0 {
		if _, err := c.cron.AddFunc(c.activitySchedule, func() {
			ctx := context.Background()
			if _, err := c.activity.CleanupOlderThan(ctx, c.activityRetention); err != nil {
				c.log.Warn("activity cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.db != nil && c.notificationRetention > 0 {
		if _, err := c.cron.AddFunc(c.notificationSchedule, func() {
			ctx := context.Background()
			if _, err := CleanupNotifications(ctx, c.db, c.now(), c.notificationRetention); err != nil {
				c.log.Warn("notification cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Primarily
// used in tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.activity != nil && c.activityRetention > 0 {
		if _, err := c.activity.CleanupOlderThan(ctx, c.activityRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.db != nil && c.notificationRetention > 0 {
		if _, err := CleanupNotifications(ctx, c.db, c.now(), c.notificationRetention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// CleanupNotifications removes read notifications older than the retention
// window. Unread notifications are kept regardless of age.
func CleanupNotifications(ctx context.Context, db *gorm.DB, now time.Time, retentionDays int) (int64, error) {
	if db == nil {
		return 0, errors.New("cleanup notifications: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := now.AddDate(0, 0, -retentionDays)
	result := db.WithContext(ctx).
		Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("cleanup notifications: %w", result.Error)
	}
	return result.RowsAffected, nil
}
