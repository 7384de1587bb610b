package notifications

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

	"github.com/tripdesk/tripdesk/internal/models"
	"github.com/tripdesk/tripdesk/internal/realtime"
	apperrors "github.com/tripdesk/tripdesk/pkg/errors"
	"github.com/tripdesk/tripdesk/pkg/logger"
	"github.com/tripdesk/tripdesk/pkg/metrics"
)

// DTO represents the API-friendly notification payload.
type DTO struct {
	ID          string         `json:"id"`
	RecipientID string         `json:"recipient_id"`
	SenderID    string         `json:"sender_id,omitempty"`
	Title       string         `json:"title"`
	Message     string         `json:"message"`
	RelatedType string         `json:"related_type,omitempty"`
	RelatedID   string         `json:"related_id,omitempty"`
	ActionURL   string         `json:"action_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	IsRead      bool           `json:"is_read"`
	CreatedAt   time.Time      `json:"created_at"`
	ReadAt      *time.Time     `json:"read_at,omitempty"`
}

// SendInput defines attributes required to persist a notification.
type SendInput struct {
	RecipientID string
	SenderID    string
	Title       string
	Message     string
	RelatedType string
	RelatedID   string
	ActionURL   string
	Metadata    map[string]any
}

// ListInput defines filters for querying user notifications.
type ListInput struct {
	RecipientID string
	Limit       int
	Offset      int
	UnreadOnly  bool
}

// EventPayload represents data sent to realtime consumers.
type EventPayload struct {
	Notification   *DTO   `json:"notification,omitempty"`
	NotificationID string `json:"notification_id,omitempty"`
}

// Service manages recipient-addressed in-app notifications. Every new record
// starts unread; the only permitted mutation afterwards is the monotonic,
// idempotent unread-to-read transition by the recipient.
type Service struct {
	db  *gorm.DB
	hub *realtime.Hub
	log *zap.Logger
}

// NewService constructs a notification Service. The hub is optional; without
// it notifications persist but are only seen on the next fetch.
func NewService(db *gorm.DB, hub *realtime.Hub) (*Service, error) {
	if db == nil {
		return nil, errors.New("notifications: db is required")
	}
	return &Service{db: db, hub: hub, log: logger.WithModule("notifications")}, nil
}

// Send persists a new unread notification and broadcasts it to any live
// subscriber of the recipient. There is no de-duplication: two identical
// calls produce two records.
func (s *Service) Send(ctx context.Context, input SendInput) (*DTO, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	recipientID := strings.TrimSpace(input.RecipientID)
	if recipientID == "" {
		return nil, errors.New("notifications: recipient id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.New("notifications: title is required")
	}

	notification := models.Notification{
		RecipientID: recipientID,
		Title:       strings.TrimSpace(input.Title),
		Message:     strings.TrimSpace(input.Message),
		RelatedType: strings.TrimSpace(input.RelatedType),
		RelatedID:   strings.TrimSpace(input.RelatedID),
		ActionURL:   strings.TrimSpace(input.ActionURL),
		IsRead:      false,
	}

	if senderID := strings.TrimSpace(input.SenderID); senderID != "" {
		notification.SenderID = &senderID
	}

	if input.Metadata != nil {
		data, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, fmt.Errorf("notifications: marshal metadata: %w", err)
		}
		notification.Metadata = datatypes.JSON(data)
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		metrics.NotificationsSent.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("notifications: create notification: %w", err)
	}
	metrics.NotificationsSent.WithLabelValues("ok").Inc()

	dto := mapNotification(notification)
	s.broadcast(recipientID, realtime.EventNotificationCreated, &EventPayload{Notification: &dto})
	return &dto, nil
}

// SendQuiet is the fire-and-forget form used by domain flows: failures are
// diagnostic-only so a missed notification can never abort a booking or
// approval. Callers log the activity first, then call SendQuiet; the dual
// write is deliberately non-atomic.
func (s *Service) SendQuiet(ctx context.Context, input SendInput) {
	if _, err := s.Send(ctx, input); err != nil {
		s.log.Warn("notification send failed",
			zap.String("recipient_id", input.RecipientID),
			zap.String("title", input.Title),
			zap.Error(err))
	}
}

// ListForUser returns a recipient's notifications ordered by recency.
func (s *Service) ListForUser(ctx context.Context, input ListInput) ([]DTO, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	recipientID := strings.TrimSpace(input.RecipientID)
	if recipientID == "" {
		return nil, errors.New("notifications: recipient id is required")
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if input.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var rows []models.Notification
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notifications: list notifications: %w", err)
	}

	return mapRows(rows), nil
}

// UnreadCount returns the number of unread notifications for the recipient.
func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("notifications: count unread: %w", err)
	}
	return count, nil
}

// MarkRead flips a notification to read on behalf of its recipient. Marking
// an already-read notification is a no-op that returns the current state.
func (s *Service) MarkRead(ctx context.Context, recipientID, notificationID string) (*DTO, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var notification models.Notification
	if err := s.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notifications: load notification: %w", err)
	}

	if notification.IsRead {
		dto := mapNotification(notification)
		return &dto, nil
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&notification).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		}).Error; err != nil {
		return nil, fmt.Errorf("notifications: mark read: %w", err)
	}

	notification.IsRead = true
	notification.ReadAt = &now
	dto := mapNotification(notification)

	s.broadcast(recipientID, realtime.EventNotificationRead, &EventPayload{
		Notification:   &dto,
		NotificationID: notification.ID,
	})

	return &dto, nil
}

// MarkAllRead flips every unread notification for the recipient in a single
// bulk update scoped to recipient and unread status.
func (s *Service) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC()
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("notifications: mark all read: %w", result.Error)
	}

	s.broadcast(recipientID, realtime.EventNotificationReadAll, nil)
	return result.RowsAffected, nil
}

func (s *Service) broadcast(recipientID, event string, payload *EventPayload) {
	if s.hub == nil {
		return
	}
	message := realtime.Message{
		Stream: realtime.StreamNotifications,
		Event:  event,
	}
	if payload != nil {
		message.Data = payload
	}
	s.hub.BroadcastToUser(realtime.StreamNotifications, recipientID, message)
}

func mapRows(rows []models.Notification) []DTO {
	items := make([]DTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row))
	}
	return items
}

func mapNotification(row models.Notification) DTO {
	dto := DTO{
		ID:          row.ID,
		RecipientID: row.RecipientID,
		Title:       row.Title,
		Message:     row.Message,
		RelatedType: row.RelatedType,
		RelatedID:   row.RelatedID,
		ActionURL:   row.ActionURL,
		Metadata:    decodeJSON(row.Metadata),
		IsRead:      row.IsRead,
		CreatedAt:   row.CreatedAt,
		ReadAt:      row.ReadAt,
	}
	if row.SenderID != nil {
		dto.SenderID = *row.SenderID
	}
	return dto
}

func decodeJSON(data datatypes.JSON) map[string]any {
	if len(data) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
