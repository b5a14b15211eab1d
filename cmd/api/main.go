package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/joshua-takyi/rsvp/internal/config"
	"github.com/joshua-takyi/rsvp/internal/connect"
	"github.com/joshua-takyi/rsvp/internal/container"
	"github.com/joshua-takyi/rsvp/internal/helpers"
	"github.com/joshua-takyi/rsvp/internal/migrations"
	"github.com/joshua-takyi/rsvp/internal/models"
	"github.com/joshua-takyi/rsvp/internal/routes"
	"github.com/rs/zerolog"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := setupLogger(cfg)
	logger.Info().Str("environment", cfg.Environment).Msg("Starting RSVP API server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.RunMigrations {
		version, err := migrations.Apply(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		logger.Info().Uint("version", version).Msg("Database schema up to date")
	}

	db, err := connect.PostgresConnect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	logger.Info().Msg("Connected to Postgres successfully")

	verifier, err := helpers.NewTokenVerifier(ctx, cfg.JWTSecret, cfg.AdminJWKSURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialise token verifier")
	}
	defer verifier.Close()

	repo := models.PostgresNewRepo(db, cfg.FrontendURL)
	eventID := ensureEvent(ctx, repo, cfg, logger)

	appContainer := container.NewContainer(cfg, logger, db, verifier, eventID)
	if err := appContainer.AuthService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Error().Err(err).Msg("Failed to ensure admin account")
	}

	cleanupDone := make(chan struct{})
	appContainer.RateLimiter.StartCleanup(10*time.Minute, cleanupDone)

	router := routes.SetupRoutes(appContainer)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	close(cleanupDone)

	if err := connect.Disconnect(db); err != nil {
		logger.Error().Err(err).Msg("Error disconnecting from Postgres")
	}
	logger.Info().Msg("Server exited")
}

// ensureEvent upserts the configured event. Guests are created without an
// event reference if this fails.
func ensureEvent(ctx context.Context, repo models.EventRepo, cfg *config.Config, logger zerolog.Logger) uuid.NullUUID {
	var location *string
	if cfg.EventLocation != "" {
		location = &cfg.EventLocation
	}
	event, err := repo.EnsureEvent(ctx, models.Event{
		Name:     cfg.EventName,
		Date:     cfg.EventDate,
		Location: location,
		Timezone: cfg.EventTimezone,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to ensure event")
		return uuid.NullUUID{}
	}
	logger.Info().Str("event_id", event.ID.String()).Str("event", event.Name).Msg("Event ready")
	return uuid.NullUUID{UUID: event.ID, Valid: true}
}

func setupLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.IsProduction() {
		return zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", "rsvp-api").Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().
		Logger()
}
