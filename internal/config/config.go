package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Minio    MinioConfig
	Log      LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds the dual-connection database configuration.
// AdminURL connects as a role that bypasses row-level security and must only
// be used for identity/membership resolution, migrations, and maintenance.
// RestrictedURL connects as the RLS-subject role used for all tenant data.
type DatabaseConfig struct {
	AdminURL      string
	RestrictedURL string
	// DisableRLS aliases the restricted pool to the admin pool. This is an
	// explicit deployment choice for environments without RLS configured;
	// startup logs a warning banner when it is set.
	DisableRLS bool
}

// RedisConfig holds the session-store configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig holds token and session configuration
type AuthConfig struct {
	JWTSecret  string
	JWKSURL    string
	AccessTTL  time.Duration
	SessionTTL time.Duration
}

// MinioConfig holds object-storage configuration for ticket attachments
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Load reads configuration from the environment, loading a .env file first
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	adminURL := os.Getenv("DATABASE_URL")
	if adminURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	disableRLS := getEnv("DISABLE_RLS", "false") == "true"

	restrictedURL := os.Getenv("RLS_DATABASE_URL")
	if restrictedURL == "" && !disableRLS {
		return nil, fmt.Errorf("RLS_DATABASE_URL is required unless DISABLE_RLS=true")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			AdminURL:      adminURL,
			RestrictedURL: restrictedURL,
			DisableRLS:    disableRLS,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			JWKSURL:    os.Getenv("JWKS_URL"),
			AccessTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
			SessionTTL: getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			UseSSL:    getEnv("MINIO_USE_SSL", "false") == "true",
			Bucket:    getEnv("MINIO_BUCKET", "ticket-attachments"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
