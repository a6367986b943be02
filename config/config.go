package config

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"sanctuary-app/internal/domain/checkout"

	"github.com/joho/godotenv"
)

var (
	PORT       string
	DB_URL     string
	JWT_SECRET string
	JWT_TTL    time.Duration
	APP_URL    string
	APP_ENV    string
	LOG_LEVEL  string
	SEED_FILE  string

	CORS_ORIGINS []string

	STRIPE_SECRET_KEY     string
	STRIPE_WEBHOOK_SECRET string
	PAYMENT_TIMEOUT       time.Duration
	CHECKOUT_CURRENCY     string

	CHECKOUT_POLL_INTERVAL     time.Duration
	CHECKOUT_POLL_MULTIPLIER   float64
	CHECKOUT_POLL_MAX_INTERVAL time.Duration
	CHECKOUT_POLL_MAX_ATTEMPTS int
	CHECKOUT_POLL_MAX_WAIT     time.Duration

	// Google sign-in is optional; the routes answer 503 when unset.
	GOOGLE_CLIENT_ID         string
	GOOGLE_CLIENT_SECRET     string
	GOOGLE_REDIRECT_URL      string
	GOOGLE_FRONTEND_REDIRECT string

	CONVERTKIT_API_KEY string
	CONVERTKIT_FORM_ID string
	RECAPTCHA_SECRET   string
)

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	PORT = getEnv("PORT", "8080")
	DB_URL = mustEnv("DB_URL")
	JWT_SECRET = mustEnv("JWT_SECRET")
	LoadOptional()
}

// LoadOptional reads every key that has a usable default. It is split out so
// commands that never touch the database can still build the poll policy.
func LoadOptional() {
	JWT_TTL = getDuration("JWT_TTL", 24*time.Hour)
	APP_URL = strings.TrimRight(getEnv("APP_URL", "http://localhost:3000"), "/")
	APP_ENV = getEnv("APP_ENV", "development")
	LOG_LEVEL = getEnv("LOG_LEVEL", "info")
	SEED_FILE = getEnv("SEED_FILE", "")
	CORS_ORIGINS = splitList(getEnv("CORS_ORIGIN", APP_URL))

	STRIPE_SECRET_KEY = getEnv("STRIPE_SECRET_KEY", "")
	STRIPE_WEBHOOK_SECRET = getEnv("STRIPE_WEBHOOK_SECRET", "")
	PAYMENT_TIMEOUT = getDuration("PAYMENT_TIMEOUT", 10*time.Second)
	CHECKOUT_CURRENCY = strings.ToLower(getEnv("CHECKOUT_CURRENCY", "usd"))

	def := checkout.DefaultPollPolicy()
	CHECKOUT_POLL_INTERVAL = getDuration("CHECKOUT_POLL_INTERVAL", def.Interval)
	CHECKOUT_POLL_MULTIPLIER = getFloat("CHECKOUT_POLL_MULTIPLIER", def.Multiplier)
	CHECKOUT_POLL_MAX_INTERVAL = getDuration("CHECKOUT_POLL_MAX_INTERVAL", def.MaxInterval)
	CHECKOUT_POLL_MAX_ATTEMPTS = getInt("CHECKOUT_POLL_MAX_ATTEMPTS", def.MaxAttempts)
	CHECKOUT_POLL_MAX_WAIT = getDuration("CHECKOUT_POLL_MAX_WAIT", def.MaxWait)

	GOOGLE_CLIENT_ID = getEnv("GOOGLE_CLIENT_ID", "")
	GOOGLE_CLIENT_SECRET = getEnv("GOOGLE_CLIENT_SECRET", "")
	GOOGLE_REDIRECT_URL = getEnv("GOOGLE_REDIRECT_URL", "")
	GOOGLE_FRONTEND_REDIRECT = getEnv("GOOGLE_FRONTEND_REDIRECT", "")

	CONVERTKIT_API_KEY = getEnv("CONVERTKIT_API_KEY", "")
	CONVERTKIT_FORM_ID = getEnv("CONVERTKIT_FORM_ID", "")
	RECAPTCHA_SECRET = getEnv("RECAPTCHA_SECRET", "")
}

// PollPolicy is the checkout status polling policy built from the environment.
func PollPolicy() checkout.PollPolicy {
	return checkout.PollPolicy{
		Interval:    CHECKOUT_POLL_INTERVAL,
		Multiplier:  CHECKOUT_POLL_MULTIPLIER,
		MaxInterval: CHECKOUT_POLL_MAX_INTERVAL,
		MaxAttempts: CHECKOUT_POLL_MAX_ATTEMPTS,
		MaxWait:     CHECKOUT_POLL_MAX_WAIT,
	}.Normalize()
}

func GoogleEnabled() bool {
	return GOOGLE_CLIENT_ID != "" && GOOGLE_CLIENT_SECRET != "" && GOOGLE_REDIRECT_URL != ""
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("invalid integer in environment, using default", slog.String("key", key), slog.String("value", raw))
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		slog.Warn("invalid number in environment, using default", slog.String("key", key), slog.String("value", raw))
		return fallback
	}
	return v
}

// getDuration accepts Go durations ("2s", "1m30s") or bare milliseconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration in environment, using default", slog.String("key", key), slog.String("value", raw))
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
