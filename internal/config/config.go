package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Log
		Auth
		RateLimit
		Audit
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Log struct {
		Level  string // logrus level name
		Format string // "text" or "json"
	}
	Auth struct {
		SessionSecret   string // hex encoded; generated per process when empty
		SessionLifetime time.Duration
		TokenExpiry     time.Duration // zero disables expiry
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS
		CSRFEnabled     bool

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	// RateLimit throttles API requests per client IP. RPS <= 0 disables it.
	RateLimit struct {
		RPS   float64
		Burst int
	}
	Audit struct {
		Enabled       bool
		RetentionDays int // used by the prune-audit command
	}
)

// LoadDotEnv loads variables from the given files (default ".env") without
// overriding variables already present in the environment. Missing files
// are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// Auth defaults
	v.SetDefault("auth_session_secret", "")       // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")  // 24 hours
	v.SetDefault("auth_token_expiry", "720h")     // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_csrf_enabled", true)       // CSRF checks for cookie sessions
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	v.SetDefault("api_rate_limit_rps", 20)
	v.SetDefault("api_rate_limit_burst", 40)

	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention_days", 90)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Auth: Auth{
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			CSRFEnabled:      v.GetBool("AUTH_CSRF_ENABLED"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		RateLimit: RateLimit{
			RPS:   v.GetFloat64("API_RATE_LIMIT_RPS"),
			Burst: v.GetInt("API_RATE_LIMIT_BURST"),
		},
		Audit: Audit{
			Enabled:       v.GetBool("AUDIT_ENABLED"),
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
	}
}
