package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Environment string
	ServerPort  int
	LogLevel    string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL string

	JWTSecret   string
	JWTIssuer   string
	SessionTTL  time.Duration
	RateLimit   int
	RateWindow  time.Duration
	AuthLimit   int // stricter budget for login/signup, per IP
	AuthWindow  time.Duration
	CORSOrigins []string

	DashboardCacheTTL time.Duration
	StatsInterval     time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	sessionTTLMin, err := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "1440"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_MINUTES: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "120"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	authLimit, err := strconv.Atoi(getEnv("AUTH_RATE_LIMIT_PER_MINUTE", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUTH_RATE_LIMIT_PER_MINUTE: %w", err)
	}

	cacheTTLSec, err := strconv.Atoi(getEnv("DASHBOARD_CACHE_TTL_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid DASHBOARD_CACHE_TTL_SECONDS: %w", err)
	}

	statsIntervalMin, err := strconv.Atoi(getEnv("STATS_INTERVAL_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_INTERVAL_MINUTES: %w", err)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "tenantcrm"),
		DBPassword: getEnv("DB_PASSWORD", "dev"),
		DBName:     getEnv("DB_NAME", "tenantcrm"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		JWTIssuer:  getEnv("JWT_ISSUER", "tenantcrm"),
		SessionTTL: time.Duration(sessionTTLMin) * time.Minute,
		RateLimit:  rateLimit,
		RateWindow: time.Minute,
		AuthLimit:  authLimit,
		AuthWindow: time.Minute,
		CORSOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),

		DashboardCacheTTL: time.Duration(cacheTTLSec) * time.Second,
		StatsInterval:     time.Duration(statsIntervalMin) * time.Minute,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
