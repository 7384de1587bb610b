package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
)

// requestContext returns the inbound request context. Handlers invoked
// without an HTTP request (direct calls in tests) get a background one.
func requestContext(c *gin.Context) context.Context {
	if c != nil && c.Request != nil {
		return c.Request.Context()
	}
	return context.Background()
}
