package container

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joshua-takyi/rsvp/internal/config"
	"github.com/joshua-takyi/rsvp/internal/email"
	"github.com/joshua-takyi/rsvp/internal/helpers"
	"github.com/joshua-takyi/rsvp/internal/middleware"
	"github.com/joshua-takyi/rsvp/internal/models"
	"github.com/joshua-takyi/rsvp/internal/services"
	"github.com/rs/zerolog"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger zerolog.Logger
	DB     *sqlx.DB

	Verifier    *helpers.TokenVerifier
	RateLimiter *middleware.RateLimiter

	Email           *email.Service
	RSVPService     *services.RSVPService
	GuestService    *services.GuestService
	AuthService     *services.AuthService
	EmailLogService *services.EmailLogService
}

// NewContainer wires repositories and services. eventID may be invalid when
// no event row exists yet.
func NewContainer(
	cfg *config.Config,
	logger zerolog.Logger,
	db *sqlx.DB,
	verifier *helpers.TokenVerifier,
	eventID uuid.NullUUID,
) *Container {
	repo := models.PostgresNewRepo(db, cfg.FrontendURL)

	mailer := email.NewService(newSender(cfg), repo, cfg.EmailsFrom, email.EventDetails{
		CoupleNames:      cfg.CoupleNames,
		Date:             cfg.EventDateDisplay(),
		Location:         cfg.EventLocation,
		ResponseDeadline: cfg.ResponseDeadline,
	}, logger)

	return &Container{
		Config:          cfg,
		Logger:          logger,
		DB:              db,
		Verifier:        verifier,
		RateLimiter:     middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst, logger),
		Email:           mailer,
		RSVPService:     services.NewRSVPService(repo, mailer, logger),
		GuestService:    services.NewGuestService(repo, mailer, eventID, logger),
		AuthService:     services.NewAuthService(repo, cfg.JWTSecret, cfg.JWTExpiry, logger),
		EmailLogService: services.NewEmailLogService(repo),
	}
}

func newSender(cfg *config.Config) email.Sender {
	if cfg.ResendAPIKey != "" {
		return email.NewResendSender(cfg.ResendAPIKey)
	}
	return email.NewSMTPSender(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
	})
}
