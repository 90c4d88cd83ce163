package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for tracker-engine
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Backup   BackupConfig
	Auth     AuthConfig
	Notify   NotifyConfig
	Catalog  CatalogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           int
	AllowedOrigins []string
}

// DatabaseConfig holds PostgreSQL configuration. An empty DSN disables the
// relational backend and the service degrades to document-store mode.
type DatabaseConfig struct {
	DSN           string
	MigrationsDir string
	MaxOpenConns  int
	MaxIdleConns  int
}

// Enabled reports whether the relational backend is configured.
func (c DatabaseConfig) Enabled() bool { return c.DSN != "" }

// RedisConfig holds Redis configuration. An empty address disables the
// document store and sessions fall back to the local store.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// Enabled reports whether the document store backend is configured.
func (c RedisConfig) Enabled() bool { return c.Address != "" }

// BackupConfig holds the local SQLite mirror configuration.
type BackupConfig struct {
	Path string
}

// AuthConfig holds session configuration
type AuthConfig struct {
	CookieName   string
	SessionTTL   time.Duration
	SecureCookie bool
	BcryptCost   int
}

// NotifyConfig holds notification auto-dismiss configuration
type NotifyConfig struct {
	DismissAfter  time.Duration
	SweepInterval time.Duration
}

// CatalogConfig holds the optional catalog override directory
type CatalogConfig struct {
	Dir string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			DSN:           getEnv("DATABASE_DSN", ""),
			MigrationsDir: getEnv("MIGRATIONS_DIR", "./migrations"),
			MaxOpenConns:  getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:  getEnvAsInt("DATABASE_MAX_IDLE_CONNS", 2),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Backup: BackupConfig{
			Path: getEnv("BACKUP_DB_PATH", "./tracker-backup.db"),
		},
		Auth: AuthConfig{
			CookieName:   getEnv("SESSION_COOKIE_NAME", "tracker_sid"),
			SessionTTL:   getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
			SecureCookie: getEnvAsBool("SESSION_SECURE_COOKIE", false),
			BcryptCost:   getEnvAsInt("BCRYPT_COST", 10),
		},
		Notify: NotifyConfig{
			DismissAfter:  getEnvAsDuration("NOTIFY_DISMISS_AFTER", 5*time.Second),
			SweepInterval: getEnvAsDuration("NOTIFY_SWEEP_INTERVAL", time.Second),
		},
		Catalog: CatalogConfig{
			Dir: getEnv("CATALOG_DIR", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Backup.Path == "" {
		return fmt.Errorf("backup database path is required")
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}

	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("invalid bcrypt cost: %d", c.Auth.BcryptCost)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
