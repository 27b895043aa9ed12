// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// JWTSecret signs and verifies bearer tokens. Required.
	JWTSecret string

	// Env is the deployment environment. Defaults to "development".
	// Outside "production" a .env file in the working directory is loaded.
	Env string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// LogFormat is "json" (default) or "text".
	LogFormat string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// AppURL is the frontend base URL used to build invite links.
	AppURL string

	InviteTTL time.Duration
	TokenTTL  time.Duration

	// InviteRetention is how long an expired pending invite is kept before the
	// sweep deletes it. Defaults to 30 days.
	InviteRetention time.Duration

	// ReadVisibility decides whether non-members may read a trip.
	ReadVisibility domain.ReadVisibility

	// HousekeepingInterval is how often expired invites are swept. Zero disables the sweep.
	HousekeepingInterval time.Duration

	// MaxBodyBytes caps request body sizes.
	MaxBodyBytes int64

	// RunMigrations applies pending migrations at startup.
	RunMigrations bool

	Mail Mail
}

// Mail configures outgoing email.
type Mail struct {
	// Provider is "noop" (default) or "ses". Production requires "ses".
	Provider    string
	FromAddress string
	FromName    string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first malformed value.
func Load() (Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		// Real environment variables win over .env entries.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		Env:         env,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		AppURL:      getEnv("APP_URL", "http://localhost:3000"),
		Mail: Mail{
			Provider:           getEnv("MAIL_PROVIDER", "noop"),
			FromAddress:        getEnv("MAIL_FROM", "noreply@localhost"),
			FromName:           getEnv("MAIL_FROM_NAME", "Trip Planner"),
			AWSRegion:          os.Getenv("AWS_REGION"),
			AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	switch cfg.Mail.Provider {
	case "noop":
		if cfg.Env == "production" {
			return Config{}, fmt.Errorf("MAIL_PROVIDER: noop cannot deliver invites in production (want ses)")
		}
	case "ses":
		for key, v := range map[string]string{
			"AWS_REGION":            cfg.Mail.AWSRegion,
			"AWS_ACCESS_KEY_ID":     cfg.Mail.AWSAccessKeyID,
			"AWS_SECRET_ACCESS_KEY": cfg.Mail.AWSSecretAccessKey,
		} {
			if v == "" {
				missing = append(missing, key)
			}
		}
	default:
		return Config{}, fmt.Errorf("MAIL_PROVIDER: unknown provider %q (want ses or noop)", cfg.Mail.Provider)
	}

	if len(missing) > 0 {
		slices.Sort(missing)
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.InviteTTL, err = getDuration("INVITE_TTL", domain.DefaultInviteTTL); err != nil {
		return Config{}, err
	}
	if cfg.InviteTTL <= 0 {
		return Config{}, fmt.Errorf("INVITE_TTL: must be positive")
	}
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL: must be positive")
	}
	if cfg.HousekeepingInterval, err = getDuration("HOUSEKEEPING_INTERVAL", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.InviteRetention, err = getDuration("INVITE_RETENTION", domain.DefaultInviteRetention); err != nil {
		return Config{}, err
	}
	if cfg.InviteRetention <= 0 {
		return Config{}, fmt.Errorf("INVITE_RETENTION: must be positive")
	}

	switch v := domain.ReadVisibility(getEnv("READ_VISIBILITY", string(domain.VisibilityMembers))); v {
	case domain.VisibilityMembers, domain.VisibilityPublic:
		cfg.ReadVisibility = v
	default:
		return Config{}, fmt.Errorf("READ_VISIBILITY: unknown value %q (want members or public)", v)
	}

	if cfg.MaxBodyBytes, err = strconv.ParseInt(getEnv("MAX_BODY_BYTES", "1048576"), 10, 64); err != nil || cfg.MaxBodyBytes <= 0 {
		return Config{}, fmt.Errorf("MAX_BODY_BYTES: must be a positive integer")
	}
	if cfg.RunMigrations, err = strconv.ParseBool(getEnv("RUN_MIGRATIONS", "true")); err != nil {
		return Config{}, fmt.Errorf("RUN_MIGRATIONS: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration parses key as a Go duration such as "168h".
func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
