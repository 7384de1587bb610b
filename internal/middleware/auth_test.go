package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/tripdesk/internal/auditctx"
	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/models"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwt, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "tripdesk"})
	require.NoError(t, err)

	r := gin.New()
	r.Use(Auth(jwt))
	return r, jwt
}

func TestAuthRejectsMissingOrMalformedHeader(t *testing.T) {
	r, _ := newAuthTestRouter(t)
	r.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, header := range []string{"", "Token abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	r, _ := newAuthTestRouter(t)
	r.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthPropagatesIdentityAndActor(t *testing.T) {
	r, jwt := newAuthTestRouter(t)

	var (
		gotUserID string
		gotRole   string
		gotActor  auditctx.Actor
		actorOK   bool
	)
	r.GET("/protected", func(c *gin.Context) {
		gotUserID = c.GetString(CtxUserIDKey)
		gotRole = c.GetString(CtxRoleKey)
		gotActor, actorOK = auditctx.FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	token, err := jwt.GenerateAccessToken(auth.AccessTokenInput{UserID: "user-1", Role: models.RoleAgent})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", "test-client")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "user-1", gotUserID)
	require.Equal(t, models.RoleAgent, gotRole)
	require.True(t, actorOK)
	require.Equal(t, "user-1", gotActor.UserID)
	require.Equal(t, "test-client", gotActor.UserAgent)
}

func TestRequireRoleAndRequireAdmin(t *testing.T) {
	r, jwt := newAuthTestRouter(t)
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/agent", RequireRole(models.RoleAgent), func(c *gin.Context) { c.Status(http.StatusOK) })

	agentToken, err := jwt.GenerateAccessToken(auth.AccessTokenInput{UserID: "user-1", Role: models.RoleAgent})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+agentToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/agent", nil)
	req.Header.Set("Authorization", "Bearer "+agentToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
