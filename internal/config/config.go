package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv                 string
	LogLevel               slog.Level
	ApiServicePort         string
	CORSAllowedOrigins     []string
	PostgreSQLHost         string
	PostgreSQLPort         int64
	PostgreSQLUser         string
	PostgreSQLPassword     string
	PostgreSQLDatabase     string
	JWTSecret              string
	AccessTokenExpiration  int64
	RefreshTokenExpiration int64
	RedisHost              string
	RedisPort              int64
	RedisPassword          string
	RedisDB                int64
	NotificationCapacity   int64
	RateLimitPerMinute     int64
	// SMTP settings configure the mail collaborator only; the core never
	// sends mail itself.
	SMTPHost     string
	SMTPPort     int64
	SMTPUser     string
	SMTPPassword string
}

func LoadConfig() *Config {
	// Best effort; containers inject env directly and carry no .env file
	_ = godotenv.Load()

	return &Config{
		AppEnv:                 getEnv("APP_ENV", "development"),                              // Default development
		LogLevel:               getLogLevel(),                                                 // Default INFO
		ApiServicePort:         getEnv("API_SERVICE_PORT", "8080"),                            // Default 8080
		CORSAllowedOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), // Default Vite dev server
		PostgreSQLHost:         getEnv("POSTGRESQL_HOST", "db"),                               // Default db
		PostgreSQLPort:         getEnvAsInt64("POSTGRESQL_PORT", 5432),                        // Default 5432
		PostgreSQLUser:         getEnv("POSTGRESQL_USER", "despensa_user"),                    // Default user
		PostgreSQLPassword:     getEnv("POSTGRESQL_PASSWORD", "despensa_password"),            // Default password
		PostgreSQLDatabase:     getEnv("POSTGRESQL_DATABASE", "despensa_db"),                  // Default database name
		JWTSecret:              getEnv("JWT_SECRET", "despensa_secret"),                       // Default secret key
		AccessTokenExpiration:  getEnvAsInt64("ACCESS_TOKEN_EXPIRATION", 900),                 // Default 15 minutes
		RefreshTokenExpiration: getEnvAsInt64("REFRESH_TOKEN_EXPIRATION", 604800),             // Default 7 days
		RedisHost:              getEnv("REDIS_HOST", "redis"),                                 // Default redis
		RedisPort:              getEnvAsInt64("REDIS_PORT", 6379),                             // Default 6379
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),                                  // Default empty
		RedisDB:                getEnvAsInt64("REDIS_DATABASE", 0),                            // Default 0
		NotificationCapacity:   getEnvAsInt64("NOTIFICATION_CAPACITY", 100),                   // Most recent 100 kept
		RateLimitPerMinute:     getEnvAsInt64("RATE_LIMIT_PER_MINUTE", 300),                   // Default 300 req/min
		SMTPHost:               getEnv("SMTP_HOST", ""),
		SMTPPort:               getEnvAsInt64("SMTP_PORT", 587),
		SMTPUser:               getEnv("SMTP_USER", ""),
		SMTPPassword:           getEnv("SMTP_PASS", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return fallback
}

func getEnvAsList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func getLogLevel() slog.Level {
	levelStr := getEnv("LOG_LEVEL", "INFO")

	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
