package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripdesk/tripdesk/internal/middleware"
	"github.com/tripdesk/tripdesk/internal/services"
	"github.com/tripdesk/tripdesk/pkg/errors"
	"github.com/tripdesk/tripdesk/pkg/response"
)

// AuthHandler exposes registration, login, and the current-user endpoint.
type AuthHandler struct {
	users *services.UserService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// Register creates a customer or agent account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email       string `json:"email" validate:"required,email"`
		Password    string `json:"password" validate:"required,min=8"`
		Name        string `json:"name" validate:"required"`
		Role        string `json:"role" validate:"omitempty,oneof=customer agent"`
		CompanyName string `json:"company_name"`
	}

	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Register(requestContext(c), services.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		Role:        req.Role,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, user)
}

// Login verifies credentials and returns a JWT access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.users.Login(requestContext(c), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserIDKey)
	if userID == "" {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	user, err := h.users.GetByID(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, user)
}
