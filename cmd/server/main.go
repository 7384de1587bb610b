package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tripdesk/tripdesk/internal/activity"
	"github.com/tripdesk/tripdesk/internal/api"
	"github.com/tripdesk/tripdesk/internal/app"
	"github.com/tripdesk/tripdesk/internal/app/maintenance"
	iauth "github.com/tripdesk/tripdesk/internal/auth"
	"github.com/tripdesk/tripdesk/internal/database"
	"github.com/tripdesk/tripdesk/internal/notifications"
	"github.com/tripdesk/tripdesk/internal/realtime"
	"github.com/tripdesk/tripdesk/internal/services"
	"github.com/tripdesk/tripdesk/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tripdesk-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")

	cfg.Auth.JWT.Secret = strings.TrimSpace(cfg.Auth.JWT.Secret)
	if cfg.Auth.JWT.Secret == "" {
		return errors.New("auth.jwt.secret must be configured")
	}

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	jwtService, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         cfg.Auth.JWT.Secret,
		Issuer:         cfg.Auth.JWT.Issuer,
		AccessTokenTTL: cfg.Auth.JWT.TTL,
	})
	if err != nil {
		return fmt.Errorf("initialise jwt service: %w", err)
	}

	hub := realtime.NewHub()

	activityLogger, err := activity.NewLogger(db)
	if err != nil {
		return fmt.Errorf("initialise activity logger: %w", err)
	}

	notificationSvc, err := notifications.NewService(db, hub)
	if err != nil {
		return fmt.Errorf("initialise notification service: %w", err)
	}

	// Disabling notifications stops the domain services from emitting new
	// ones; the read and mark-read endpoints keep serving existing records.
	notifier := notificationSvc
	if !cfg.Notifications.Enabled {
		notifier = nil
	}

	userSvc, err := services.NewUserService(db, jwtService, activityLogger, notifier)
	if err != nil {
		return fmt.Errorf("initialise user service: %w", err)
	}
	packageSvc, err := services.NewPackageService(db, activityLogger, notifier)
	if err != nil {
		return fmt.Errorf("initialise package service: %w", err)
	}
	bookingSvc, err := services.NewBookingService(db, activityLogger, notifier, hub)
	if err != nil {
		return fmt.Errorf("initialise booking service: %w", err)
	}

	cleaner := maintenance.NewCleaner(db, activityLogger,
		maintenance.WithActivityRetentionDays(cfg.Activity.RetentionDays),
		maintenance.WithActivitySchedule(cfg.Activity.CleanupSchedule),
		maintenance.WithNotificationRetentionDays(cfg.Notifications.RetentionDays),
		maintenance.WithNotificationSchedule(cfg.Notifications.CleanupSchedule),
	)
	if err := cleaner.Start(); err != nil {
		return fmt.Errorf("start maintenance jobs: %w", err)
	}
	defer func() {
		stopCtx := cleaner.Stop()
		if err := cleaner.RunOnce(stopCtx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}()

	router, err := api.NewRouter(api.Dependencies{
		DB:            db,
		Config:        cfg,
		JWT:           jwtService,
		Hub:           hub,
		Activity:      activityLogger,
		Notifications: notificationSvc,
		Users:         userSvc,
		Packages:      packageSvc,
		Bookings:      bookingSvc,
	})
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.DatabaseOpenConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
