package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rsvp/internal/email"
	"github.com/joshua-takyi/rsvp/internal/models"
	"github.com/rs/zerolog"
)

var ErrGuestNotInvitable = errors.New("guest has no email address or rsvp token to invite")

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

type GuestService struct {
	guests  models.GuestRepo
	mailer  Mailer
	eventID uuid.NullUUID
	log     zerolog.Logger
	now     func() time.Time
}

func NewGuestService(guests models.GuestRepo, mailer Mailer, eventID uuid.NullUUID, logger zerolog.Logger) *GuestService {
	return &GuestService{
		guests:  guests,
		mailer:  mailer,
		eventID: eventID,
		log:     logger.With().Str("component", "guests").Logger(),
		now:     time.Now,
	}
}

type CreateGuestInput struct {
	Email             string          `json:"email" validate:"required,email"`
	FirstName         string          `json:"first_name" validate:"required"`
	LastName          string          `json:"last_name" validate:"required"`
	Phone             *string         `json:"phone"`
	Notes             *string         `json:"notes"`
	PreferredLanguage models.Language `json:"preferred_language" validate:"omitempty,oneof=en es nl"`
	FamilyID          *uuid.UUID      `json:"family_id"`
	SendInvitation    bool            `json:"send_invitation"`
}

type CreateChildInput struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	Phone     *string `json:"phone"`
}

type CreateFamilyInput struct {
	Name *string `json:"name"`
}

// Page normalizes offset/limit query values.
func Page(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return offset, limit
}

func (gs *GuestService) ListGuests(ctx context.Context, status string, offset, limit int) ([]models.GuestDetails, int, error) {
	filter := models.GuestFilter{}
	filter.Offset, filter.Limit = Page(offset, limit)

	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		s := models.GuestStatus(status)
		if !s.IsValid() {
			return nil, 0, &ValidationError{Fields: FieldErrors{
				"status": "status must be one of: pending confirmed declined",
			}}
		}
		filter.Status = &s
	}
	return gs.guests.ListGuests(ctx, filter)
}

func (gs *GuestService) GetGuest(ctx context.Context, id uuid.UUID) (*models.GuestDetails, error) {
	return gs.guests.GetGuest(ctx, id)
}

// CreateGuest registers an adult guest and optionally emails the invitation
// straight away. A failed invitation is logged and leaves email_sent_on unset.
func (gs *GuestService) CreateGuest(ctx context.Context, in CreateGuestInput) (*models.GuestDetails, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = trimOptional(in.Phone)
	if in.PreferredLanguage == "" {
		in.PreferredLanguage = models.LanguageEN
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	ng := models.NewGuest{
		Email:             in.Email,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Phone:             in.Phone,
		Notes:             in.Notes,
		PreferredLanguage: in.PreferredLanguage,
		EventID:           gs.eventID,
	}
	if in.FamilyID != nil {
		ng.FamilyID = uuidNull(*in.FamilyID)
	}

	guest, err := gs.guests.CreateGuest(ctx, ng)
	if err != nil {
		return nil, err
	}
	gs.log.Info().Str("guest_id", guest.ID.String()).Msg("Guest created")

	if !in.SendInvitation {
		return guest, nil
	}
	invited, err := gs.invite(ctx, guest)
	if err != nil {
		gs.log.Warn().Err(err).Str("guest_id", guest.ID.String()).Msg("Guest created but invitation failed")
		return guest, nil
	}
	return invited, nil
}

func (gs *GuestService) UpdateGuest(ctx context.Context, id uuid.UUID, update models.GuestUpdate) (*models.GuestDetails, error) {
	if update.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*update.Email))
		update.Email = &e
	}
	update.FirstName = trimOptional(update.FirstName)
	update.LastName = trimOptional(update.LastName)
	update.Phone = trimOptional(update.Phone)
	if err := validateStruct(update); err != nil {
		return nil, err
	}
	return gs.guests.UpdateGuest(ctx, id, update)
}

func (gs *GuestService) DeleteGuest(ctx context.Context, id uuid.UUID) error {
	if err := gs.guests.DeleteGuest(ctx, id); err != nil {
		return err
	}
	gs.log.Info().Str("guest_id", id.String()).Msg("Guest deleted")
	return nil
}

// SendInvitation emails the guest their RSVP link and records when it went out.
func (gs *GuestService) SendInvitation(ctx context.Context, id uuid.UUID) (*models.GuestDetails, error) {
	guest, err := gs.guests.GetGuest(ctx, id)
	if err != nil {
		return nil, err
	}
	return gs.invite(ctx, guest)
}

func (gs *GuestService) invite(ctx context.Context, guest *models.GuestDetails) (*models.GuestDetails, error) {
	if guest.Email == nil || *guest.Email == "" || guest.RSVPLink == "" {
		return nil, ErrGuestNotInvitable
	}
	if gs.mailer == nil {
		return nil, fmt.Errorf("no mailer configured")
	}

	inv := email.Invitation{
		GuestID:   guest.ID,
		UserID:    guest.UserID,
		To:        *guest.Email,
		GuestName: guest.FullName(),
		Link:      guest.RSVPLink,
		Language:  guest.PreferredLanguage,
	}
	if guest.PlusOneOfID.Valid {
		err := gs.mailer.SendPlusOneInvitation(ctx, email.PlusOneInvitation{Invitation: inv})
		if err != nil {
			return nil, err
		}
	} else if err := gs.mailer.SendInvitation(ctx, inv); err != nil {
		return nil, err
	}

	if err := gs.guests.MarkInvitationSent(ctx, guest.ID, gs.now().UTC()); err != nil {
		return nil, err
	}
	return gs.guests.GetGuest(ctx, guest.ID)
}

func (gs *GuestService) CreateFamily(ctx context.Context, in CreateFamilyInput) (*models.Family, error) {
	name := trimOptional(in.Name)
	if name != nil && *name == "" {
		name = nil
	}
	return gs.guests.CreateFamily(ctx, name)
}

func (gs *GuestService) CreateChildGuest(ctx context.Context, familyID uuid.UUID, in CreateChildInput) (*models.GuestDetails, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Phone = trimOptional(in.Phone)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	return gs.guests.CreateChildGuest(ctx, models.NewChildGuest{
		FamilyID:  familyID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		EventID:   gs.eventID,
	})
}

func uuidNull(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
