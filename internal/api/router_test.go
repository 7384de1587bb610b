package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tripdesk/tripdesk/internal/activity"
	"github.com/tripdesk/tripdesk/internal/app"
	iauth "github.com/tripdesk/tripdesk/internal/auth"
	testutil "github.com/tripdesk/tripdesk/internal/database/testutil"
	"github.com/tripdesk/tripdesk/internal/notifications"
	"github.com/tripdesk/tripdesk/internal/realtime"
	"github.com/tripdesk/tripdesk/internal/services"
)

func newTestRouter(t *testing.T, db *gorm.DB) (*gin.Engine, *iauth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret", Issuer: "tripdesk", AccessTokenTTL: 15 * time.Minute})
	require.NoError(t, err)

	hub := realtime.NewHub()
	activityLogger, err := activity.NewLogger(db)
	require.NoError(t, err)
	notifier, err := notifications.NewService(db, hub)
	require.NoError(t, err)

	users, err := services.NewUserService(db, jwt, activityLogger, notifier)
	require.NoError(t, err)
	packages, err := services.NewPackageService(db, activityLogger, notifier)
	require.NoError(t, err)
	bookings, err := services.NewBookingService(db, activityLogger, notifier, hub)
	require.NoError(t, err)

	cfg := &app.Config{}
	cfg.Monitoring.Health.Enabled = true
	cfg.Monitoring.Prometheus.Enabled = true

	router, err := NewRouter(Dependencies{
		DB:            db,
		Config:        cfg,
		JWT:           jwt,
		Hub:           hub,
		Activity:      activityLogger,
		Notifications: notifier,
		Users:         users,
		Packages:      packages,
		Bookings:      bookings,
	})
	require.NoError(t, err)
	return router, jwt
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	router, jwt := newTestRouter(t, db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	for _, path := range []string{"/api/auth/me", "/api/notifications", "/api/bookings", "/api/activities"} {
		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	// The audit feed is admin-only even with a valid token.
	token, err := jwt.GenerateAccessToken(iauth.AccessTokenInput{UserID: "user-1", Role: "customer"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/activities", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouterRequiresCoreDependencies(t *testing.T) {
	_, err := NewRouter(Dependencies{})
	require.Error(t, err)
}

func TestRouterRejectsMissingNotificationService(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	gin.SetMode(gin.TestMode)

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret", Issuer: "tripdesk", AccessTokenTTL: 15 * time.Minute})
	require.NoError(t, err)

	hub := realtime.NewHub()
	activityLogger, err := activity.NewLogger(db)
	require.NoError(t, err)

	users, err := services.NewUserService(db, jwt, activityLogger, nil)
	require.NoError(t, err)
	packages, err := services.NewPackageService(db, activityLogger, nil)
	require.NoError(t, err)
	bookings, err := services.NewBookingService(db, activityLogger, nil, hub)
	require.NoError(t, err)

	_, err = NewRouter(Dependencies{
		DB:       db,
		Config:   &app.Config{},
		JWT:      jwt,
		Hub:      hub,
		Activity: activityLogger,
		Users:    users,
		Packages: packages,
		Bookings: bookings,
	})
	require.ErrorContains(t, err, "notification service")
}

// Domain services may run without a notifier (sends disabled); the
// notification endpoints must still answer from the store.
func TestRouterNotificationEndpointsServeWhenSendsDisabled(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	gin.SetMode(gin.TestMode)

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret", Issuer: "tripdesk", AccessTokenTTL: 15 * time.Minute})
	require.NoError(t, err)

	hub := realtime.NewHub()
	activityLogger, err := activity.NewLogger(db)
	require.NoError(t, err)
	notificationSvc, err := notifications.NewService(db, hub)
	require.NoError(t, err)

	users, err := services.NewUserService(db, jwt, activityLogger, nil)
	require.NoError(t, err)
	packages, err := services.NewPackageService(db, activityLogger, nil)
	require.NoError(t, err)
	bookings, err := services.NewBookingService(db, activityLogger, nil, hub)
	require.NoError(t, err)

	router, err := NewRouter(Dependencies{
		DB:            db,
		Config:        &app.Config{},
		JWT:           jwt,
		Hub:           hub,
		Activity:      activityLogger,
		Notifications: notificationSvc,
		Users:         users,
		Packages:      packages,
		Bookings:      bookings,
	})
	require.NoError(t, err)

	token, err := jwt.GenerateAccessToken(iauth.AccessTokenInput{UserID: "user-1", Role: "customer"})
	require.NoError(t, err)

	for _, path := range []string{"/api/notifications", "/api/notifications/unread-count"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, path)
	}
}
