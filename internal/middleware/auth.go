package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tripdesk/tripdesk/internal/auditctx"
	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/models"
	"github.com/tripdesk/tripdesk/pkg/errors"
	"github.com/tripdesk/tripdesk/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"
	CtxRoleKey   = "userRole"
)

// Auth enforces JWT authentication using the supplied JWT service. On success
// the actor (id, role, client ip, user agent) is attached to the request
// context for downstream activity logging.
func Auth(jwt *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		// Propagate identity into request context
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxRoleKey, claims.Role)

		ctx := auditctx.WithActor(c.Request.Context(), auditctx.Actor{
			UserID:    claims.UserID,
			Role:      claims.Role,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole rejects requests whose authenticated role does not match.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxRoleKey) != role {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin is shorthand for the admin console routes.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}
