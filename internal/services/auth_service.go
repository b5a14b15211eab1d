package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joshua-takyi/rsvp/internal/helpers"
	"github.com/joshua-takyi/rsvp/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService struct {
	users     models.UserRepo
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(users models.UserRepo, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       logger.With().Str("component", "auth").Logger(),
		now:       time.Now,
	}
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login exchanges a superuser's credentials for a signed bearer token.
func (as *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	user, err := as.users.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !user.IsSuperuser || user.HashedPassword == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.HashedPassword), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expires, err := helpers.IssueAdminToken(as.jwtSecret, user.ID, user.Email, as.tokenTTL, as.now())
	if err != nil {
		return nil, err
	}
	as.log.Info().Str("user_id", user.ID.String()).Msg("Admin logged in")
	return &LoginResult{AccessToken: token, TokenType: "Bearer", ExpiresAt: expires}, nil
}

// EnsureAdmin creates or refreshes the bootstrap administrator.
func (as *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		as.log.Warn().Msg("ADMIN_EMAIL or ADMIN_PASSWORD not set; skipping admin bootstrap")
		return nil
	}
	if err := models.Validate.Var(email, "email"); err != nil {
		return fmt.Errorf("invalid admin email: %w", err)
	}
	if !helpers.IsPasswordStrong(password) {
		as.log.Warn().Msg("Admin password is weak; use at least 8 characters mixing cases, digits and symbols")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	user, err := as.users.EnsureSuperuser(ctx, email, string(hash))
	if err != nil {
		return err
	}
	as.log.Info().Str("user_id", user.ID.String()).Msg("Admin account ensured")
	return nil
}
