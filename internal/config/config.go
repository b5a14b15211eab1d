package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port        string   `env:"PORT" envDefault:"8080"`
	Environment string   `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	FrontendURL string   `env:"FRONTEND_URL" envDefault:"http://localhost:4321"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	DatabaseURL   string `env:"DATABASE_URL,required,notEmpty"`
	RunMigrations bool   `env:"RUN_MIGRATIONS_ON_STARTUP" envDefault:"true"`

	JWTSecret     string        `env:"JWT_SECRET"`
	JWTExpiry     time.Duration `env:"JWT_EXPIRY" envDefault:"168h"`
	AdminJWKSURL  string        `env:"ADMIN_JWKS_URL"`
	AdminEmail    string        `env:"ADMIN_EMAIL"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"1025"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	EmailsFrom   string `env:"EMAILS_FROM" envDefault:"rsvp@example.com"`
	ResendAPIKey string `env:"RESEND_API_KEY"`

	CoupleNames      string    `env:"COUPLE_NAMES" envDefault:"The Happy Couple"`
	EventName        string    `env:"EVENT_NAME" envDefault:"Wedding Celebration"`
	EventDate        time.Time `env:"EVENT_DATE" envDefault:"2026-09-12T16:00:00Z"`
	EventLocation    string    `env:"EVENT_LOCATION"`
	EventTimezone    string    `env:"EVENT_TIMEZONE" envDefault:"UTC"`
	ResponseDeadline string    `env:"RESPONSE_DEADLINE"`

	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND" envDefault:"1"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" envDefault:"5"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{cfg.FrontendURL}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" && c.AdminJWKSURL == "" {
		return errors.New("JWT_SECRET or ADMIN_JWKS_URL is required")
	}
	if c.IsProduction() && c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters in production")
	}
	if _, err := time.LoadLocation(c.EventTimezone); err != nil {
		return fmt.Errorf("EVENT_TIMEZONE %q: %w", c.EventTimezone, err)
	}
	if c.RateLimitPerSecond <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_PER_SECOND and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// EventDateDisplay renders the event date in the event's own timezone.
func (c *Config) EventDateDisplay() string {
	loc, err := time.LoadLocation(c.EventTimezone)
	if err != nil {
		loc = time.UTC
	}
	return c.EventDate.In(loc).Format("Monday, 2 January 2006 at 15:04")
}
