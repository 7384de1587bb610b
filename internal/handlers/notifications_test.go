package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/database/testutil"
	"github.com/tripdesk/tripdesk/internal/middleware"
	"github.com/tripdesk/tripdesk/internal/notifications"
)

type notificationTestServer struct {
	router  *gin.Engine
	service *notifications.Service
	jwt     *auth.JWTService
}

func newNotificationTestServer(t *testing.T) notificationTestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	service, err := notifications.NewService(db, nil)
	require.NoError(t, err)

	jwt, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "tripdesk"})
	require.NoError(t, err)

	handler := NewNotificationHandler(service, nil, jwt)

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.Auth(jwt))
	group := api.Group("/notifications")
	group.GET("", handler.List)
	group.GET("/unread-count", handler.UnreadCount)
	group.POST("/:id/read", handler.MarkRead)
	group.POST("/read-all", handler.MarkAllRead)

	return notificationTestServer{router: r, service: service, jwt: jwt}
}

func (s notificationTestServer) do(t *testing.T, method, path, userID string) *httptest.ResponseRecorder {
	t.Helper()

	token, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{UserID: userID, Role: "customer"})
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body struct {
		Success bool           `json:"success"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.True(t, body.Success)
	return body.Data
}

func TestNotificationEndpointsAreRecipientScoped(t *testing.T) {
	s := newNotificationTestServer(t)
	ctx := context.Background()

	mine, err := s.service.Send(ctx, notifications.SendInput{RecipientID: "user-1", Title: "mine"})
	require.NoError(t, err)
	_, err = s.service.Send(ctx, notifications.SendInput{RecipientID: "user-2", Title: "theirs"})
	require.NoError(t, err)

	w := s.do(t, http.MethodGet, "/api/notifications", "user-1")
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeData(t, w)
	items, ok := data["notifications"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	w = s.do(t, http.MethodGet, "/api/notifications/unread-count", "user-1")
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 1, decodeData(t, w)["count"])

	// Another user cannot mark a foreign notification read.
	w = s.do(t, http.MethodPost, "/api/notifications/"+mine.ID+"/read", "user-2")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotificationMarkReadEndpointIsIdempotent(t *testing.T) {
	s := newNotificationTestServer(t)

	dto, err := s.service.Send(context.Background(), notifications.SendInput{RecipientID: "user-1", Title: "read me"})
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/api/notifications/"+dto.ID+"/read", "user-1")
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/notifications/"+dto.ID+"/read", "user-1")
	require.Equal(t, http.StatusOK, w.Code)

	count, err := s.service.UnreadCount(context.Background(), "user-1")
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestNotificationReadAllEndpoint(t *testing.T) {
	s := newNotificationTestServer(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.service.Send(ctx, notifications.SendInput{RecipientID: "user-1", Title: "unread"})
		require.NoError(t, err)
	}

	w := s.do(t, http.MethodPost, "/api/notifications/read-all", "user-1")
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 3, decodeData(t, w)["updated"])

	w = s.do(t, http.MethodGet, "/api/notifications/unread-count", "user-1")
	require.EqualValues(t, 0, decodeData(t, w)["count"])
}

func TestNotificationEndpointsRequireAuth(t *testing.T) {
	s := newNotificationTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
