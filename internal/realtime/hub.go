package realtime

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tripdesk/tripdesk/pkg/logger"
	"github.com/tripdesk/tripdesk/pkg/metrics"
)

// Message represents a JSON payload delivered to realtime subscribers.
type Message struct {
	Stream string `json:"stream"`
	Event  string `json:"event"`
	Data   any    `json:"data,omitempty"`
}

// subscriber is the delivery endpoint shared by websocket connections and
// in-process subscriptions.
type subscriber interface {
	deliver(Message) bool
	shutdown()
}

// Hub coordinates per-user realtime streams. Delivery is at-most-once per
// live subscriber; whoever is offline when an event fires recovers via the
// next full rehydration, never via replay.
type Hub struct {
	mu            sync.RWMutex
	subscriptions map[string]map[string]map[subscriber]struct{}
	upgrader      websocket.Upgrader
	log           *zap.Logger
}

// NewHub constructs a realtime hub.
func NewHub() *Hub {
	return &Hub{
		subscriptions: make(map[string]map[string]map[subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Allow same-origin requests and explicit localhost development.
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				originHost := hostWithoutPort(origin)
				requestHost := hostWithoutPort(r.Host)
				return originHost == requestHost || isLoopback(originHost)
			},
		},
		log: logger.WithModule("realtime"),
	}
}

// BroadcastToUser delivers a message to all subscribers for the supplied user on a stream.
func (h *Hub) BroadcastToUser(stream, userID string, message Message) {
	stream = normalizeStream(stream)
	if stream == "" || userID == "" {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	byUser, ok := h.subscriptions[stream]
	if !ok {
		return
	}

	targets := byUser[userID]
	if len(targets) == 0 {
		return
	}

	message.Stream = stream
	for target := range targets {
		if target.deliver(message) {
			metrics.RealtimeDeliveries.WithLabelValues("delivered").Inc()
		} else {
			metrics.RealtimeDeliveries.WithLabelValues("dropped").Inc()
		}
	}
}

// BroadcastToUsers delivers a message to each of the supplied user IDs on the provided stream.
func (h *Hub) BroadcastToUsers(stream string, userIDs []string, message Message) {
	for _, userID := range userIDs {
		h.BroadcastToUser(stream, userID, message)
	}
}

func (h *Hub) register(stream, userID string, target subscriber) {
	stream = normalizeStream(stream)
	if stream == "" || userID == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscriptions[stream] == nil {
		h.subscriptions[stream] = make(map[string]map[subscriber]struct{})
	}
	if h.subscriptions[stream][userID] == nil {
		h.subscriptions[stream][userID] = make(map[subscriber]struct{})
	}
	h.subscriptions[stream][userID][target] = struct{}{}
	metrics.RealtimeSubscribers.Inc()
}

func (h *Hub) unregister(stream, userID string, target subscriber) {
	stream = normalizeStream(stream)

	h.mu.Lock()
	defer h.mu.Unlock()

	byUser, ok := h.subscriptions[stream]
	if !ok {
		return
	}
	targets := byUser[userID]
	if _, exists := targets[target]; !exists {
		return
	}

	delete(targets, target)
	if len(targets) == 0 {
		delete(byUser, userID)
	}
	if len(byUser) == 0 {
		delete(h.subscriptions, stream)
	}
	metrics.RealtimeSubscribers.Dec()
}

func hostWithoutPort(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}

	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		parsed, err := http.NewRequest(http.MethodGet, host, nil)
		if err == nil {
			return hostWithoutPort(parsed.URL.Host)
		}
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func isLoopback(host string) bool {
	ip := net.ParseIP(host)
	if ip != nil {
		return ip.IsLoopback()
	}
	return strings.EqualFold(host, "localhost")
}

func normalizeStream(stream string) string {
	return strings.ToLower(strings.TrimSpace(stream))
}
