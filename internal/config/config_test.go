package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rsvp?sslmode=disable")
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("FRONTEND_URL", "https://wedding.example.com/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "https://wedding.example.com", cfg.FrontendURL)
	assert.Equal(t, []string{"https://wedding.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 1025, cfg.SMTPPort)
	assert.True(t, cfg.RunMigrations)
}

func TestLoadConfigRequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "dev-secret")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rsvp")
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("ENVIRONMENT", "production")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "at least 32 characters")

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("EVENT_TIMEZONE", "Mars/Olympus")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "EVENT_TIMEZONE")
}

func TestEventDateDisplay(t *testing.T) {
	cfg := Config{
		EventDate:     time.Date(2026, 9, 12, 14, 0, 0, 0, time.UTC),
		EventTimezone: "Europe/Madrid",
	}
	assert.Equal(t, "Saturday, 12 September 2026 at 16:00", cfg.EventDateDisplay())
}
