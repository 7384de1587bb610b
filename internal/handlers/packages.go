package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripdesk/tripdesk/internal/middleware"
	"github.com/tripdesk/tripdesk/internal/services"
	"github.com/tripdesk/tripdesk/pkg/response"
)

// PackageHandler exposes the travel package catalogue and its review flow.
type PackageHandler struct {
	packages *services.PackageService
}

// NewPackageHandler constructs a PackageHandler.
func NewPackageHandler(packages *services.PackageService) *PackageHandler {
	return &PackageHandler{packages: packages}
}

// Create submits a new package. The caller must be an approved agent.
func (h *PackageHandler) Create(c *gin.Context) {
	var req struct {
		Title        string `json:"title" validate:"required"`
		Description  string `json:"description"`
		Destination  string `json:"destination" validate:"required"`
		DurationDays int    `json:"duration_days" validate:"required,min=1"`
		Price        int64  `json:"price" validate:"required,min=0"`
	}

	if !bindAndValidate(c, &req) {
		return
	}

	pkg, err := h.packages.Create(requestContext(c), services.CreatePackageInput{
		AgentID:      c.GetString(middleware.CtxUserIDKey),
		Title:        req.Title,
		Description:  req.Description,
		Destination:  req.Destination,
		DurationDays: req.DurationDays,
		Price:        req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, pkg)
}

// Get returns a single package with its agent preloaded.
func (h *PackageHandler) Get(c *gin.Context) {
	pkg, err := h.packages.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, pkg)
}

// List returns the package catalogue with optional filters.
func (h *PackageHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "per_page", 20)

	packages, total, err := h.packages.List(requestContext(c), services.ListPackagesInput{
		Status:      c.Query("status"),
		AgentID:     c.Query("agent_id"),
		Destination: c.Query("destination"),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	response.SuccessWithMeta(c, http.StatusOK, gin.H{"packages": packages}, &response.Meta{
		Page:       page,
		PerPage:    pageSize,
		Total:      int(total),
		TotalPages: totalPages,
	})
}

// Approve marks a pending package as approved. Admin only.
func (h *PackageHandler) Approve(c *gin.Context) {
	pkg, err := h.packages.Approve(requestContext(c), c.Param("id"), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, pkg)
}

// Reject marks a pending package as rejected with an optional note. Admin only.
func (h *PackageHandler) Reject(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	// the body is optional for rejections
	_ = c.ShouldBindJSON(&req)

	pkg, err := h.packages.Reject(requestContext(c), c.Param("id"), c.GetString(middleware.CtxUserIDKey), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, pkg)
}
