package services

import (
	"context"
	"strings"

	"github.com/joshua-takyi/rsvp/internal/email"
	"github.com/joshua-takyi/rsvp/internal/metrics"
	"github.com/joshua-takyi/rsvp/internal/models"
	"github.com/rs/zerolog"
)

// Mailer is the subset of the email service the guest flows depend on.
type Mailer interface {
	SendInvitation(ctx context.Context, inv email.Invitation) error
	SendPlusOneInvitation(ctx context.Context, inv email.PlusOneInvitation) error
	SendConfirmation(ctx context.Context, c email.Confirmation) error
}

type RSVPService struct {
	repo   models.RSVPRepo
	mailer Mailer
	log    zerolog.Logger
}

func NewRSVPService(repo models.RSVPRepo, mailer Mailer, logger zerolog.Logger) *RSVPService {
	return &RSVPService{
		repo:   repo,
		mailer: mailer,
		log:    logger.With().Str("component", "rsvp").Logger(),
	}
}

type RSVPResult struct {
	Message   string             `json:"message"`
	Attending bool               `json:"attending"`
	Status    models.GuestStatus `json:"status"`
	RSVP      *models.RSVPView   `json:"rsvp"`
}

func (s *RSVPService) GetRSVPInfo(ctx context.Context, token string) (*models.RSVPView, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, models.ErrNotFound
	}
	return s.repo.GetRSVPInfo(ctx, token)
}

// SubmitRSVP validates and applies a submission. Notification emails go out
// only after the write has committed and never fail the submission.
func (s *RSVPService) SubmitRSVP(ctx context.Context, token string, sub models.RSVPSubmission) (*RSVPResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, models.ErrNotFound
	}
	if err := ValidateAndNormalizeRSVP(&sub); err != nil {
		return nil, err
	}

	outcome, err := s.repo.ApplyRSVP(ctx, token, sub)
	if err != nil {
		return nil, err
	}
	metrics.RecordRSVPSubmission(string(outcome.View.Status))

	s.notify(context.WithoutCancel(ctx), sub, outcome)

	msg := "Thank you for confirming your attendance!"
	if !sub.Attending {
		msg = "We're sorry you can't make it. Your response has been recorded."
	}
	return &RSVPResult{
		Message:   msg,
		Attending: sub.Attending,
		Status:    outcome.View.Status,
		RSVP:      outcome.View,
	}, nil
}

func (s *RSVPService) notify(ctx context.Context, sub models.RSVPSubmission, outcome *models.RSVPOutcome) {
	if s.mailer == nil {
		return
	}
	view := outcome.View
	guestName := joinName(view.FirstName, view.LastName)

	if outcome.GuestEmail != nil && *outcome.GuestEmail != "" {
		var plusOne string
		if view.PlusOne != nil {
			plusOne = joinName(view.PlusOne.FirstName, view.PlusOne.LastName)
		}
		err := s.mailer.SendConfirmation(ctx, email.Confirmation{
			GuestID:   view.GuestID,
			UserID:    outcome.UserID,
			To:        *outcome.GuestEmail,
			GuestName: guestName,
			Attending: sub.Attending,
			Dietary:   view.DietaryRequirements,
			PlusOne:   plusOne,
			Language:  view.PreferredLanguage,
		})
		if err != nil {
			s.log.Warn().Err(err).Str("guest_id", view.GuestID.String()).Msg("Failed to send RSVP confirmation")
		}
	}

	if p := outcome.NewPlusOne; p != nil {
		err := s.mailer.SendPlusOneInvitation(ctx, email.PlusOneInvitation{
			Invitation: email.Invitation{
				GuestID:   p.GuestID,
				UserID:    uuidNull(p.UserID),
				To:        p.Email,
				GuestName: joinName(p.FirstName, p.LastName),
				Link:      p.Link,
				Language:  p.Language,
			},
			HostName: guestName,
		})
		if err != nil {
			s.log.Warn().Err(err).Str("guest_id", p.GuestID.String()).Msg("Failed to send plus-one invitation")
		}
	}
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
