package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/tripdesk/tripdesk/internal/database"
)

// Config represents the runtime configuration for the TripDesk backend.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Activity      ActivityConfig      `mapstructure:"activity"`
	Notifications NotificationConfig  `mapstructure:"notifications"`
	Monitoring    MonitoringConfig    `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// AuthConfig captures authentication-related settings.
type AuthConfig struct {
	JWT JWTSettings `mapstructure:"jwt"`
}

// JWTSettings configures JWT access tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"access_token_ttl"`
}

// ActivityConfig controls the audit trail retention window.
type ActivityConfig struct {
	RetentionDays   int    `mapstructure:"retention_days"`
	CleanupSchedule string `mapstructure:"cleanup_schedule"`
}

// NotificationConfig tunes the notification pipeline. Retention applies to
// read notifications only; unread ones are never pruned.
type NotificationConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	RetentionDays   int    `mapstructure:"retention_days"`
	CleanupSchedule string `mapstructure:"cleanup_schedule"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("TRIPDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

// DatabaseOpenConfig maps the loaded configuration onto the database layer's options.
func (c *Config) DatabaseOpenConfig() database.Config {
	cfg := database.Config{
		Driver: c.Database.Driver,
		Path:   c.Database.Path,
		DSN:    c.Database.DSN,
	}

	switch strings.ToLower(c.Database.Driver) {
	case "postgres", "postgresql":
		cfg.Host = c.Database.Postgres.Host
		cfg.Port = c.Database.Postgres.Port
		cfg.User = c.Database.Postgres.Username
		cfg.Password = c.Database.Postgres.Password
		cfg.Name = c.Database.Postgres.Database
	case "mysql", "mariadb":
		cfg.Host = c.Database.MySQL.Host
		cfg.Port = c.Database.MySQL.Port
		cfg.User = c.Database.MySQL.Username
		cfg.Password = c.Database.MySQL.Password
		cfg.Name = c.Database.MySQL.Database
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/tripdesk.sqlite")

	v.SetDefault("auth.jwt.issuer", "tripdesk")
	v.SetDefault("auth.jwt.access_token_ttl", "30m")

	v.SetDefault("activity.retention_days", 180)
	v.SetDefault("activity.cleanup_schedule", "@daily")

	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.retention_days", 90)
	v.SetDefault("notifications.cleanup_schedule", "@daily")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
