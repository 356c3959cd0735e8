// Package config provides application configuration loaded from environment
// variables. Call MustLoad() once in main() so misconfiguration is caught at
// boot instead of surfacing as a placeholder endpoint at the first request.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sub-config structs
// ──────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          string        // e.g. "8080"
	Env           string        // "development" | "production"
	ReadTimeout   time.Duration // default 10s
	WriteTimeout  time.Duration // default 10s
	AllowedOrigin string        // frontend origin allowed by CORS in production
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	DSN             string        // full postgres DSN
	MaxOpenConns    int           // default 25
	MaxIdleConns    int           // default 10
	ConnMaxLifetime time.Duration // default 5m
}

// JWTConfig holds JWT signing settings.
type JWTConfig struct {
	Secret     string        // must be set
	AccessTTL  time.Duration // default 15m
	RefreshTTL time.Duration // default 720h (30 days)
}

// GoalConfig holds the defaults a fresh month's goal starts with and the
// last-resort stake used when neither the candidate nor the goal yields one.
type GoalConfig struct {
	DefaultTarget        decimal.Decimal // default 500
	DefaultDays          int             // default 20
	DefaultEntriesPerDay int             // default 5
	FallbackStake        decimal.Decimal // default 5
}

// SMTPConfig holds outbound mail settings for confirmation emails.
// An empty Host in development switches the mailer to log-only mode.
type SMTPConfig struct {
	Host     string
	Port     string // default "587"
	Username string
	Password string
	From     string // sender address, default "no-reply@laytrack.app"
	BaseURL  string // public URL the confirm link points at, default "http://localhost:8080"
}

// ──────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ──────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the entire application.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	Goal   GoalConfig
	SMTP   SMTPConfig
}

// IsProd returns true when running in the production environment.
func (c *Config) IsProd() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and
// valid. Returns every validation error encountered, joined.
func (c *Config) Validate() error {
	var errs []error

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET must be set"))
	}

	if c.IsProd() {
		if c.DB.DSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN must be set in production"))
		}
		if c.SMTP.Host == "" {
			errs = append(errs, errors.New("SMTP_HOST must be set in production"))
		}
		if c.Server.AllowedOrigin == "" {
			errs = append(errs, errors.New("CORS_ALLOWED_ORIGIN must be set in production"))
		}
	}

	if c.Goal.DefaultDays <= 0 {
		errs = append(errs, fmt.Errorf("GOAL_DEFAULT_DAYS must be positive, got %d", c.Goal.DefaultDays))
	}
	if c.Goal.DefaultEntriesPerDay <= 0 {
		errs = append(errs, fmt.Errorf("GOAL_DEFAULT_ENTRIES_PER_DAY must be positive, got %d", c.Goal.DefaultEntriesPerDay))
	}
	if !c.Goal.FallbackStake.IsPositive() {
		errs = append(errs, fmt.Errorf("GOAL_FALLBACK_STAKE must be positive, got %s", c.Goal.FallbackStake))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// MustLoad loads and validates configuration. Intended for use in main().
// Panics on any error so misconfiguration is caught immediately at boot.
func MustLoad() *Config {
	cfg, err := load()
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: validation failed: %v", err))
	}
	return cfg
}

// ──────────────────────────────────────────────────────────────────────────────
// Internal loader
// ──────────────────────────────────────────────────────────────────────────────

func load() (*Config, error) {
	cfg := &Config{}

	// ── Server ────────────────────────────────────────────────────────────────
	cfg.Server = ServerConfig{
		Port:          getEnv("SERVER_PORT", "8080"),
		Env:           getEnv("ENVIRONMENT", "development"),
		ReadTimeout:   getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:  getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		AllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", ""),
	}

	// ── Database ──────────────────────────────────────────────────────────────
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		// Build DSN from individual components for convenience in dev
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "laytrack"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_IDLE_CONNS: %w", err)
	}

	cfg.DB = DBConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	// ── JWT ───────────────────────────────────────────────────────────────────
	cfg.JWT = JWTConfig{
		Secret:     getEnv("JWT_SECRET", ""),
		AccessTTL:  getDuration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTTL: getDuration("JWT_REFRESH_TTL", 30*24*time.Hour),
	}

	// ── Goal defaults ─────────────────────────────────────────────────────────
	target, err := getDecimal("GOAL_DEFAULT_TARGET", decimal.NewFromInt(500))
	if err != nil {
		return nil, fmt.Errorf("GOAL_DEFAULT_TARGET: %w", err)
	}
	days, err := getInt("GOAL_DEFAULT_DAYS", 20)
	if err != nil {
		return nil, fmt.Errorf("GOAL_DEFAULT_DAYS: %w", err)
	}
	perDay, err := getInt("GOAL_DEFAULT_ENTRIES_PER_DAY", 5)
	if err != nil {
		return nil, fmt.Errorf("GOAL_DEFAULT_ENTRIES_PER_DAY: %w", err)
	}
	fallback, err := getDecimal("GOAL_FALLBACK_STAKE", decimal.NewFromInt(5))
	if err != nil {
		return nil, fmt.Errorf("GOAL_FALLBACK_STAKE: %w", err)
	}

	cfg.Goal = GoalConfig{
		DefaultTarget:        target,
		DefaultDays:          days,
		DefaultEntriesPerDay: perDay,
		FallbackStake:        fallback,
	}

	// ── SMTP ──────────────────────────────────────────────────────────────────
	cfg.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     getEnv("SMTP_PORT", "587"),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@laytrack.app"),
		BaseURL:  getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
	}

	return cfg, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helper functions
// ──────────────────────────────────────────────────────────────────────────────

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

func getDecimal(key string, defaultVal decimal.Decimal) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q", v)
	}
	return d, nil
}

// getDuration parses an env var as a Go duration string (e.g. "15m", "2s").
// Falls back to defaultVal if the variable is unset or empty.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
