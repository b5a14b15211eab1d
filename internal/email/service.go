package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rsvp/internal/metrics"
	"github.com/joshua-takyi/rsvp/internal/models"
	"github.com/rs/zerolog"
)

// EventDetails are the wedding facts interpolated into every email.
type EventDetails struct {
	CoupleNames      string
	Date             string
	Location         string
	ResponseDeadline string
}

type Service struct {
	sender Sender
	logs   models.EmailLogRepo
	from   string
	event  EventDetails
	log    zerolog.Logger
}

func NewService(sender Sender, logs models.EmailLogRepo, from string, event EventDetails, logger zerolog.Logger) *Service {
	return &Service{
		sender: sender,
		logs:   logs,
		from:   from,
		event:  event,
		log:    logger.With().Str("component", "email").Str("backend", sender.Name()).Logger(),
	}
}

type Invitation struct {
	GuestID   uuid.UUID
	UserID    uuid.NullUUID
	To        string
	GuestName string
	Link      string
	Language  models.Language
}

type PlusOneInvitation struct {
	Invitation
	HostName string
}

type Confirmation struct {
	GuestID   uuid.UUID
	UserID    uuid.NullUUID
	To        string
	GuestName string
	Attending bool
	Dietary   []models.DietaryRequirement
	PlusOne   string
	Language  models.Language
}

func (s *Service) SendInvitation(ctx context.Context, inv Invitation) error {
	return s.deliver(ctx, models.EmailTypeInvitation, inv.Language, inv.To, inv.GuestID, inv.UserID, templateData{
		GuestName: inv.GuestName,
		RSVPURL:   inv.Link,
	})
}

func (s *Service) SendPlusOneInvitation(ctx context.Context, inv PlusOneInvitation) error {
	return s.deliver(ctx, models.EmailTypePlusOneInvite, inv.Language, inv.To, inv.GuestID, inv.UserID, templateData{
		GuestName: inv.GuestName,
		HostName:  inv.HostName,
		RSVPURL:   inv.Link,
	})
}

func (s *Service) SendConfirmation(ctx context.Context, c Confirmation) error {
	t := copyFor(c.Language)
	plusOne := c.PlusOne
	if plusOne == "" {
		plusOne = t.None
	}
	return s.deliver(ctx, models.EmailTypeConfirmation, c.Language, c.To, c.GuestID, c.UserID, templateData{
		GuestName: c.GuestName,
		Attending: c.Attending,
		Dietary:   describeDietary(c.Dietary, t.None),
		PlusOne:   plusOne,
	})
}

func (s *Service) deliver(ctx context.Context, kind models.EmailType, lang models.Language, to string, guestID uuid.UUID, userID uuid.NullUUID, data templateData) error {
	data.CoupleNames = s.event.CoupleNames
	data.EventDate = s.event.Date
	data.EventLocation = s.event.Location
	data.ResponseDeadline = s.event.ResponseDeadline

	subject, html, text, err := render(kind, lang, data)
	if err != nil {
		return err
	}

	logID, err := s.logs.CreateEmailLog(ctx, models.NewEmailLog{
		ToAddress:   to,
		FromAddress: s.from,
		Subject:     subject,
		HTMLBody:    html,
		TextBody:    text,
		EmailType:   kind,
		GuestID:     uuid.NullUUID{UUID: guestID, Valid: guestID != uuid.Nil},
		UserID:      userID,
		Language:    lang,
	})
	if err != nil {
		// Delivery still goes ahead without an audit row.
		s.log.Warn().Err(err).Str("type", string(kind)).Msg("Failed to create email log")
		logID = uuid.Nil
	}

	providerID, sendErr := s.sender.Send(ctx, Message{
		From:    s.from,
		To:      to,
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
	metrics.RecordEmail(s.sender.Name(), string(kind), sendErr)

	if sendErr != nil {
		if logID != uuid.Nil {
			if err := s.logs.MarkEmailFailed(ctx, logID, sendErr.Error()); err != nil {
				s.log.Warn().Err(err).Str("email_log_id", logID.String()).Msg("Failed to mark email as failed")
			}
		}
		return fmt.Errorf("send %s email: %w", kind, sendErr)
	}

	if logID != uuid.Nil {
		if err := s.logs.MarkEmailSent(ctx, logID, providerID); err != nil {
			s.log.Warn().Err(err).Str("email_log_id", logID.String()).Msg("Failed to mark email as sent")
		}
	}

	s.log.Info().
		Str("type", string(kind)).
		Str("language", string(lang)).
		Str("provider_message_id", providerID).
		Msg("Email sent")
	return nil
}

func describeDietary(reqs []models.DietaryRequirement, none string) string {
	if len(reqs) == 0 {
		return none
	}
	parts := make([]string, 0, len(reqs))
	for _, r := range reqs {
		label := strings.ReplaceAll(string(r.RequirementType), "_", " ")
		if r.Notes != "" {
			label += " (" + r.Notes + ")"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, ", ")
}
