package services

import (
	"context"
	"errors"
	"strings"

	"github.com/joshua-takyi/rsvp/internal/metrics"
	"github.com/joshua-takyi/rsvp/internal/models"
)

// InvitationRequestMessage is returned for every accepted request so callers
// cannot tell whether an address was already on the guest list.
const InvitationRequestMessage = "If your details match our guest list, an invitation is on its way to your inbox."

type InvitationRequest struct {
	Email     string           `json:"email" validate:"required,email"`
	FirstName string           `json:"first_name" validate:"required"`
	LastName  string           `json:"last_name" validate:"required"`
	Language  *models.Language `json:"language" validate:"omitempty,oneof=en es nl"`
}

// RequestInvitation resends the invitation of a known guest or registers a
// new one. fallback is used when the request names no language.
func (gs *GuestService) RequestInvitation(ctx context.Context, req InvitationRequest, fallback models.Language) error {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := validateStruct(req); err != nil {
		return err
	}

	existing, err := gs.guests.FindGuestByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if req.Language != nil && *req.Language != existing.PreferredLanguage {
			if err := gs.guests.SetPreferredLanguage(ctx, existing.ID, *req.Language); err != nil {
				return err
			}
			if existing, err = gs.guests.GetGuest(ctx, existing.ID); err != nil {
				return err
			}
		}
		gs.sendRequestedInvitation(ctx, existing, "resent")
		return nil

	case !errors.Is(err, models.ErrNotFound):
		return err
	}

	lang := fallback
	if req.Language != nil {
		lang = *req.Language
	}
	if !lang.IsValid() {
		lang = models.LanguageEN
	}

	created, err := gs.guests.CreateGuest(ctx, models.NewGuest{
		Email:             req.Email,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		PreferredLanguage: lang,
		EventID:           gs.eventID,
	})
	if errors.Is(err, models.ErrGuestAlreadyExists) {
		// Lost a race with a concurrent request for the same address.
		metrics.RecordInvitationRequest("duplicate")
		return nil
	}
	if err != nil {
		return err
	}
	gs.sendRequestedInvitation(ctx, created, "created")
	return nil
}

func (gs *GuestService) sendRequestedInvitation(ctx context.Context, guest *models.GuestDetails, outcome string) {
	if _, err := gs.invite(ctx, guest); err != nil {
		metrics.RecordInvitationRequest(outcome + "_failed")
		gs.log.Warn().Err(err).Str("guest_id", guest.ID.String()).Msg("Failed to send requested invitation")
		return
	}
	metrics.RecordInvitationRequest(outcome)
}
