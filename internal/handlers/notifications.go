package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/middleware"
	"github.com/tripdesk/tripdesk/internal/notifications"
	"github.com/tripdesk/tripdesk/internal/realtime"
	"github.com/tripdesk/tripdesk/pkg/errors"
	"github.com/tripdesk/tripdesk/pkg/response"
)

// NotificationHandler serves the per-user notification inbox and the
// realtime stream endpoint.
type NotificationHandler struct {
	service *notifications.Service
	hub     *realtime.Hub
	jwt     *auth.JWTService
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(service *notifications.Service, hub *realtime.Hub, jwt *auth.JWTService) *NotificationHandler {
	return &NotificationHandler{service: service, hub: hub, jwt: jwt}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)

	items, err := h.service.ListForUser(requestContext(c), notifications.ListInput{
		RecipientID: userID,
		Limit:       parseIntQuery(c, "limit", 0),
		Offset:      parseIntQuery(c, "offset", 0),
		UnreadOnly:  c.Query("unread") == "true",
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"notifications": items})
}

// UnreadCount returns the caller's number of unread notifications.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)

	count, err := h.service.UnreadCount(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"count": count})
}

// MarkRead marks a single notification as read. Repeat calls are no-ops.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)

	item, err := h.service.MarkRead(requestContext(c), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, item)
}

// MarkAllRead marks every unread notification of the caller as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)

	updated, err := h.service.MarkAllRead(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": updated})
}

// Stream upgrades the connection to a websocket subscribed to the caller's
// notification stream. Browsers cannot set headers on websocket requests,
// so the token may also arrive as a query parameter.
func (h *NotificationHandler) Stream(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimPrefix(header, "Bearer ")
		}
	}
	if token == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	streams := []string{realtime.StreamNotifications}
	if requested := c.Query("streams"); requested != "" {
		streams = strings.Split(requested, ",")
	}

	h.hub.Serve(claims.UserID, streams, c.Writer, c.Request)
}
