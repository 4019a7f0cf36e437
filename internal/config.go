package internal

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/DukeRupert/boxoffice/internal/session"
	"github.com/joho/godotenv"
)

// devSessionSecret signs cookies when SESSION_SECRET is unset in development.
const devSessionSecret = "development-only-session-secret-change-me"

type Config struct {
	Env         string
	Port        int
	LogLevel    string
	DatabaseUrl string

	// SessionSecret signs the session cookie. At least session.MinSecretLength bytes.
	SessionSecret string

	// Metrics endpoint authentication
	// If both are empty, the /metrics endpoint will be unprotected (not recommended)
	MetricsUsername string
	MetricsPassword string

	// Login throttling per client IP
	LoginRateLimit  int
	LoginRateWindow time.Duration

	// TrustProxy keys rate limits on X-Forwarded-For. Enable only behind a
	// reverse proxy that sets the header itself.
	TrustProxy bool

	ShutdownTimeout time.Duration
}

func NewConfig() (*Config, error) {
	// Load .env file if it exists (ignored in production)
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "debug"),

		SessionSecret: os.Getenv("SESSION_SECRET"),

		// Metrics authentication
		MetricsUsername: getEnv("METRICS_USERNAME", ""),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 5),
		LoginRateWindow: getEnvDuration("LOGIN_RATE_WINDOW", 15*time.Minute),
		TrustProxy:      getEnvBool("TRUST_PROXY", false),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	// Required
	cfg.DatabaseUrl = os.Getenv("DATABASE_URL")
	if cfg.DatabaseUrl == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.SessionSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("SESSION_SECRET is required when ENV is %q", cfg.Env)
		}
		cfg.SessionSecret = devSessionSecret
	}
	if len(cfg.SessionSecret) < session.MinSecretLength {
		return nil, fmt.Errorf("SESSION_SECRET must be at least %d bytes, got %d", session.MinSecretLength, len(cfg.SessionSecret))
	}

	if cfg.LoginRateLimit < 1 {
		return nil, fmt.Errorf("LOGIN_RATE_LIMIT must be at least 1, got %d", cfg.LoginRateLimit)
	}
	if cfg.LoginRateWindow <= 0 {
		return nil, fmt.Errorf("LOGIN_RATE_WINDOW must be positive, got %s", cfg.LoginRateWindow)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
