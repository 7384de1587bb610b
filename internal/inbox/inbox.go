// Package inbox maintains the per-session view of a user's notifications:
// hydrated from the store on load, mutated by realtime pushes and local
// read-marking, bounded to the most recent entries.
package inbox

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/tripdesk/tripdesk/internal/notifications"
	"github.com/tripdesk/tripdesk/internal/realtime"
	"github.com/tripdesk/tripdesk/pkg/logger"
)

// DefaultLimit bounds the cache to the most recent N records.
const DefaultLimit = 50

// Store is the slice of the notification service the inbox depends on.
type Store interface {
	ListForUser(ctx context.Context, input notifications.ListInput) ([]notifications.DTO, error)
	MarkRead(ctx context.Context, recipientID, notificationID string) (*notifications.DTO, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
}

// Inbox is one session's notification cache. It owns a hub subscription for
// its lifetime; Close releases it. All methods are safe for concurrent use.
type Inbox struct {
	store  Store
	userID string
	limit  int
	log    *zap.Logger

	mu    sync.Mutex
	items []notifications.DTO

	sub  *realtime.Subscription
	done chan struct{}
}

// New builds an inbox for the user and, when a hub is supplied, subscribes to
// the user's notification stream. Callers must Close the inbox on session end.
func New(store Store, hub *realtime.Hub, userID string, limit int) *Inbox {
	if limit <= 0 {
		limit = DefaultLimit
	}

	ib := &Inbox{
		store:  store,
		userID: userID,
		limit:  limit,
		log:    logger.WithModule("inbox"),
		done:   make(chan struct{}),
	}

	if hub != nil {
		ib.sub = hub.Subscribe(realtime.StreamNotifications, userID)
		go ib.consume()
	} else {
		close(ib.done)
	}

	return ib
}

// Hydrate replaces the entire cache with the most recent records from the
// store. This is the sole recovery path after any missed realtime event. A
// read failure degrades to an empty inbox rather than erroring.
func (i *Inbox) Hydrate(ctx context.Context) {
	items, err := i.store.ListForUser(ctx, notifications.ListInput{
		RecipientID: i.userID,
		Limit:       i.limit,
	})
	if err != nil {
		i.log.Warn("hydrate failed, degrading to empty inbox",
			zap.String("user_id", i.userID), zap.Error(err))
		items = nil
	}

	i.mu.Lock()
	i.items = items
	i.mu.Unlock()
}

// Notifications returns a snapshot of the cached records, newest first.
func (i *Inbox) Notifications() []notifications.DTO {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make([]notifications.DTO, len(i.items))
	copy(out, i.items)
	return out
}

// UnreadCount recomputes the unread total from the live list. It is never
// stored as independent state, so it cannot drift from the list contents.
func (i *Inbox) UnreadCount() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.unreadLocked()
}

// Len returns the number of cached records.
func (i *Inbox) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.items)
}

// MarkRead optimistically flips the local entry to read, then issues the
// persistence call. The local state is not rolled back when the store call
// fails; the inconsistency window closes on the next hydration.
func (i *Inbox) MarkRead(ctx context.Context, notificationID string) {
	i.mu.Lock()
	for idx := range i.items {
		if i.items[idx].ID == notificationID {
			i.items[idx].IsRead = true
			break
		}
	}
	i.mu.Unlock()

	if _, err := i.store.MarkRead(ctx, i.userID, notificationID); err != nil {
		i.log.Warn("mark read persist failed",
			zap.String("notification_id", notificationID), zap.Error(err))
	}
}

// MarkAllRead flips all locally unread entries and issues one bulk store
// call scoped to the recipient's unread records.
func (i *Inbox) MarkAllRead(ctx context.Context) {
	i.mu.Lock()
	for idx := range i.items {
		i.items[idx].IsRead = true
	}
	i.mu.Unlock()

	if _, err := i.store.MarkAllRead(ctx, i.userID); err != nil {
		i.log.Warn("mark all read persist failed",
			zap.String("user_id", i.userID), zap.Error(err))
	}
}

// Close releases the realtime subscription and waits for the consumer to stop.
func (i *Inbox) Close() {
	if i.sub != nil {
		i.sub.Close()
	}
	<-i.done
}

func (i *Inbox) consume() {
	defer close(i.done)
	for message := range i.sub.Events() {
		i.apply(message)
	}
}

func (i *Inbox) apply(message realtime.Message) {
	payload, _ := message.Data.(*notifications.EventPayload)

	i.mu.Lock()
	defer i.mu.Unlock()

	switch message.Event {
	case realtime.EventNotificationCreated:
		if payload == nil || payload.Notification == nil {
			return
		}
		i.items = append([]notifications.DTO{*payload.Notification}, i.items...)
		if len(i.items) > i.limit {
			i.items = i.items[:i.limit]
		}

	case realtime.EventNotificationRead:
		if payload == nil || payload.Notification == nil {
			return
		}
		// Last write wins; only the owner mutates read state, so replacing
		// by id needs no conflict resolution.
		for idx := range i.items {
			if i.items[idx].ID == payload.Notification.ID {
				i.items[idx] = *payload.Notification
				return
			}
		}

	case realtime.EventNotificationReadAll:
		for idx := range i.items {
			i.items[idx].IsRead = true
		}
	}
}

func (i *Inbox) unreadLocked() int {
	count := 0
	for idx := range i.items {
		if !i.items[idx].IsRead {
			count++
		}
	}
	return count
}
