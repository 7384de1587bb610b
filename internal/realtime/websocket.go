package realtime

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20 // 1 MiB

	connectionBufferSize = 64
)

type controlMessage struct {
	Action  string   `json:"action"`
	Streams []string `json:"streams"`
}

// Serve upgrades the HTTP connection to a WebSocket and registers the client
// on the supplied streams. The call blocks until the client disconnects.
func (h *Hub) Serve(userID string, streams []string, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &connection{
		hub:     h,
		socket:  conn,
		userID:  userID,
		streams: make(map[string]struct{}),
		send:    make(chan Message, connectionBufferSize),
	}
	client.subscribe(streams)

	go client.writeLoop()
	client.readLoop()
}

type connection struct {
	hub    *Hub
	socket *websocket.Conn
	userID string
	send   chan Message
	once   sync.Once

	mu      sync.Mutex
	streams map[string]struct{}
}

func (c *connection) subscribe(streams []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, stream := range streams {
		stream = normalizeStream(stream)
		if stream == "" {
			continue
		}
		if _, exists := c.streams[stream]; exists {
			continue
		}
		c.streams[stream] = struct{}{}
		c.hub.register(stream, c.userID, c)
	}
}

func (c *connection) unsubscribe(streams []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, stream := range streams {
		stream = normalizeStream(stream)
		if _, exists := c.streams[stream]; !exists {
			continue
		}
		delete(c.streams, stream)
		c.hub.unregister(stream, c.userID, c)
	}
}

func (c *connection) deliver(message Message) bool {
	select {
	case c.send <- message:
		return true
	default:
		c.hub.log.Warn("dropping backpressure client", zap.String("user_id", c.userID))
		// deliver runs under the hub read lock; close must take the write
		// lock, so it happens on its own goroutine.
		go c.close()
		return false
	}
}

func (c *connection) shutdown() { c.close() }

func (c *connection) readLoop() {
	defer c.close()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("unexpected close", zap.String("user_id", c.userID), zap.Error(err))
			}
			break
		}

		if len(payload) == 0 {
			continue
		}

		var ctrl controlMessage
		if err := json.Unmarshal(payload, &ctrl); err != nil {
			c.hub.log.Warn("invalid control payload", zap.String("user_id", c.userID), zap.Error(err))
			continue
		}

		switch strings.ToLower(strings.TrimSpace(ctrl.Action)) {
		case "subscribe":
			c.subscribe(ctrl.Streams)
		case "unsubscribe":
			c.unsubscribe(ctrl.Streams)
		case "ping":
			select {
			case c.send <- Message{Event: "pong"}:
			default:
			}
		default:
			c.hub.log.Warn("unsupported control action",
				zap.String("action", ctrl.Action), zap.String("user_id", c.userID))
		}
	}
}

func (c *connection) writeLoop() {
	defer c.close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *connection) close() {
	c.once.Do(func() {
		c.mu.Lock()
		for stream := range c.streams {
			c.hub.unregister(stream, c.userID, c)
		}
		c.streams = nil
		c.mu.Unlock()

		close(c.send)
		_ = c.socket.Close()
	})
}
