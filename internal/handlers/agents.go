package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripdesk/tripdesk/internal/middleware"
	"github.com/tripdesk/tripdesk/internal/services"
	"github.com/tripdesk/tripdesk/pkg/response"
)

// AgentHandler exposes the admin endpoints for agent onboarding review.
type AgentHandler struct {
	users *services.UserService
}

// NewAgentHandler constructs an AgentHandler.
func NewAgentHandler(users *services.UserService) *AgentHandler {
	return &AgentHandler{users: users}
}

// ListPending returns agents awaiting approval.
func (h *AgentHandler) ListPending(c *gin.Context) {
	agents, err := h.users.ListPendingAgents(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"agents": agents})
}

// Approve grants an agent the ability to publish packages.
func (h *AgentHandler) Approve(c *gin.Context) {
	agent, err := h.users.ApproveAgent(requestContext(c), c.Param("id"), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, agent)
}

// Reject declines an agent application with an optional reason.
func (h *AgentHandler) Reject(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	agent, err := h.users.RejectAgent(requestContext(c), c.Param("id"), c.GetString(middleware.CtxUserIDKey), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, agent)
}
