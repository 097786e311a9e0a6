package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	JWTSecret    string
	SeedPassword string

	// report
	ReportTimezone string
	ReportCacheTTL time.Duration

	// notifications
	ReviewDelay            time.Duration
	ApprovalRate           float64
	NotificationPermission string
	NotificationsChannel   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTelEndpoint    string
	OTelServiceName string

	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	ListenerHealthAddr string
}

func Load() Config {
	// a missing .env is fine, the process env wins anyway
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-me"),
		SeedPassword: getEnv("SEED_PASSWORD", "123"),

		ReportTimezone: getEnv("REPORT_TIMEZONE", "America/Sao_Paulo"),
		ReportCacheTTL: time.Duration(getEnvInt("REPORT_CACHE_TTL_SECONDS", 30)) * time.Second,

		ReviewDelay:            time.Duration(getEnvInt("REVIEW_DELAY_MS", 8000)) * time.Millisecond,
		ApprovalRate:           getEnvFloat("APPROVAL_RATE", 0.7),
		NotificationPermission: getEnv("NOTIFICATION_PERMISSION", "default"),
		NotificationsChannel:   getEnv("NOTIFICATIONS_CHANNEL", "fuellog:notifications"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTelEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelServiceName: getEnv("OTEL_SERVICE_NAME", "fuellog-api"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 20<<20)),

		ListenerHealthAddr: getEnv("LISTENER_HEALTH_ADDR", ":8081"),
	}
}

// Location resolves the report time zone, falling back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		slog.Default().Warn("unknown report timezone, using UTC", "tz", c.ReportTimezone, "err", err)
		return time.UTC
	}
	return loc
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Default().Warn("invalid integer env value, using default", "key", key, "value", v)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			slog.Default().Warn("invalid float env value, using default", "key", key, "value", v)
			return fallback
		}
		return f
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
