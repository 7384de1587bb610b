package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tripdesk/tripdesk/internal/activity"
	"github.com/tripdesk/tripdesk/pkg/errors"
	"github.com/tripdesk/tripdesk/pkg/response"
)

// ActivityHandler exposes the admin-only activity trail.
type ActivityHandler struct {
	activity *activity.Logger
}

// NewActivityHandler constructs an ActivityHandler.
func NewActivityHandler(logger *activity.Logger) *ActivityHandler {
	return &ActivityHandler{activity: logger}
}

// List returns a filtered, paginated page of activity records.
func (h *ActivityHandler) List(c *gin.Context) {
	filters, err := activityFilters(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	page := parseIntQuery(c, "page", 1)
	perPage := parseIntQuery(c, "per_page", 50)

	records, total, err := h.activity.List(requestContext(c), activity.ListOptions{
		Page:     page,
		PageSize: perPage,
		Filters:  filters,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	totalPages := 0
	if perPage > 0 {
		totalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	response.SuccessWithMeta(c, http.StatusOK, gin.H{"activities": records}, &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      int(total),
		TotalPages: totalPages,
	})
}

// Export returns the full filtered activity trail without pagination.
func (h *ActivityHandler) Export(c *gin.Context) {
	filters, err := activityFilters(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	records, err := h.activity.Export(requestContext(c), filters)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"activities": records})
}

func activityFilters(c *gin.Context) (activity.Filters, error) {
	filters := activity.Filters{
		ActorID:      c.Query("actor_id"),
		ActivityType: c.Query("type"),
		EntityType:   c.Query("entity_type"),
		EntityID:     c.Query("entity_id"),
	}

	since, err := parseTimeQuery(c, "since")
	if err != nil {
		return filters, err
	}
	filters.Since = since

	until, err := parseTimeQuery(c, "until")
	if err != nil {
		return filters, err
	}
	filters.Until = until

	return filters, nil
}

func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.NewBadRequest(key + " must be an RFC 3339 timestamp")
	}
	return &parsed, nil
}
