package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the whole process configuration. It is loaded once at
// startup and never mutated afterwards; core packages receive it (or
// individual values) by injection and never read the environment
// themselves.
type Config struct {
	Port   string
	AppEnv string

	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	// JWTSecret and JWTAlgorithm are required; the codec refuses to
	// start without them.
	JWTSecret    string
	JWTAlgorithm string
	// AccessTokenTTL is the TTL applied at login issuance. The codec
	// keeps its own 60 minute fallback for call sites that pass no TTL.
	AccessTokenTTL time.Duration

	AdminUsername string
	AdminPassword string

	LoginRateLimitMax    int
	LoginRateLimitWindow time.Duration

	SentryDSN string

	LogLevel  string
	LogPretty bool

	GeoAPIBaseURL string
	GeoAPIToken   string

	CronSecret       string
	LogRetention     time.Duration
	CleanupBatchSize int
}

// Load reads the configuration from the environment. Missing required
// values make startup fail; everything else has a default.
func Load() (*Config, error) {
	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return nil, err
	}
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}
	jwtAlgorithm, err := mustEnv("JWT_ALGORITHM")
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:   envOrDefault("PORT", "8080"),
		AppEnv: envOrDefault("APP_ENV", "development"),

		DatabaseURL:       databaseURL,
		DBMaxOpenConns:    envIntOrDefault("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:    envIntOrDefault("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: envMinutesOrDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30),
		DBConnMaxIdleTime: envMinutesOrDefault("DB_CONN_MAX_IDLE_TIME_MINUTES", 10),

		JWTSecret:      jwtSecret,
		JWTAlgorithm:   jwtAlgorithm,
		AccessTokenTTL: envMinutesOrDefault("ACCESS_TOKEN_TTL_MINUTES", 30),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		LoginRateLimitMax:    envIntOrDefault("LOGIN_RATE_LIMIT_MAX", 10),
		LoginRateLimitWindow: envSecondsOrDefault("LOGIN_RATE_LIMIT_WINDOW_SECONDS", 60),

		SentryDSN: os.Getenv("SENTRY_DSN"),

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogPretty: envBoolOrDefault("LOG_PRETTY", false),

		GeoAPIBaseURL: envOrDefault("GEO_API_BASE_URL", "https://ipinfo.io"),
		GeoAPIToken:   os.Getenv("GEO_API_TOKEN"),

		CronSecret:       os.Getenv("CRON_SECRET"),
		LogRetention:     envDaysOrDefault("LOG_RETENTION_DAYS", 90),
		CleanupBatchSize: envIntOrDefault("CLEANUP_BATCH_SIZE", 500),
	}, nil
}

func mustEnv(name string) (string, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return "", fmt.Errorf("missing required env: %s", name)
	}
	return value, nil
}

func envOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envIntOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envBoolOrDefault(name string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if value == "" {
		return fallback
	}

	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func envMinutesOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Minute
}

func envSecondsOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Second
}

func envDaysOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * 24 * time.Hour
}
