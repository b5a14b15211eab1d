package models

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type RSVPInfo struct {
	ID          uuid.UUID   `db:"uuid" json:"id"`
	GuestID     uuid.UUID   `db:"guest_id" json:"guest_id"`
	Status      GuestStatus `db:"status" json:"status"`
	Active      bool        `db:"active" json:"active"`
	Token       *string     `db:"rsvp_token" json:"rsvp_token"`
	Link        *string     `db:"rsvp_link" json:"rsvp_link"`
	Notes       *string     `db:"notes" json:"notes"`
	EmailSentOn *time.Time  `db:"email_sent_on" json:"email_sent_on"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// RSVPSubmission is the payload a guest posts from the RSVP form.
type RSVPSubmission struct {
	Attending           bool                             `json:"attending"`
	FirstName           string                           `json:"first_name"`
	LastName            string                           `json:"last_name"`
	Phone               *string                          `json:"phone,omitempty"`
	Allergies           *string                          `json:"allergies,omitempty"`
	DietaryRequirements []DietaryRequirement             `json:"dietary_requirements"`
	PlusOne             *PlusOneSubmission               `json:"plus_one,omitempty"`
	FamilyMemberUpdates map[uuid.UUID]FamilyMemberUpdate `json:"family_member_updates,omitempty"`
}

type PlusOneSubmission struct {
	Email               string               `json:"email"`
	FirstName           string               `json:"first_name"`
	LastName            string               `json:"last_name"`
	Allergies           *string              `json:"allergies,omitempty"`
	DietaryRequirements []DietaryRequirement `json:"dietary_requirements"`
}

type GuestInfoUpdate struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
}

// FamilyMemberUpdate answers on behalf of another member of the guest's
// family. Family members cannot bring a plus-one.
type FamilyMemberUpdate struct {
	Attending           bool                 `json:"attending"`
	GuestInfo           *GuestInfoUpdate     `json:"guest_info,omitempty"`
	Allergies           *string              `json:"allergies,omitempty"`
	DietaryRequirements []DietaryRequirement `json:"dietary_requirements"`
}

type PlusOneView struct {
	Email     *string `db:"email" json:"email"`
	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
}

type FamilyMemberView struct {
	GuestID             uuid.UUID            `json:"guest_id"`
	FirstName           string               `json:"first_name"`
	LastName            string               `json:"last_name"`
	GuestType           GuestType            `json:"guest_type"`
	Status              *GuestStatus         `json:"status"`
	Attending           *bool                `json:"attending"`
	Allergies           *string              `json:"allergies"`
	DietaryRequirements []DietaryRequirement `json:"dietary_requirements"`
}

// RSVPView is everything the RSVP form needs to render and prefill itself.
type RSVPView struct {
	GuestID             uuid.UUID            `json:"guest_id"`
	Token               string               `json:"token"`
	FirstName           string               `json:"first_name"`
	LastName            string               `json:"last_name"`
	Phone               *string              `json:"phone"`
	Allergies           *string              `json:"allergies"`
	Status              GuestStatus          `json:"status"`
	Attending           *bool                `json:"attending"`
	PreferredLanguage   Language             `json:"preferred_language"`
	IsPlusOne           bool                 `json:"is_plus_one"`
	CanBringPlusOne     bool                 `json:"can_bring_plus_one"`
	DietaryRequirements []DietaryRequirement `json:"dietary_requirements"`
	FamilyID            uuid.NullUUID        `json:"family_id"`
	FamilyMembers       []FamilyMemberView   `json:"family_members"`
	PlusOne             *PlusOneView         `json:"plus_one"`
	Event               *Event               `json:"event"`
}

// NewPlusOne describes a plus-one guest created while applying an RSVP so
// the caller can send them their own invitation once the transaction commits.
type NewPlusOne struct {
	GuestID   uuid.UUID
	UserID    uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Link      string
	Language  Language
}

type RSVPOutcome struct {
	View       *RSVPView
	GuestEmail *string
	UserID     uuid.NullUUID
	NewPlusOne *NewPlusOne
}

type RSVPRepo interface {
	GetRSVPInfo(ctx context.Context, token string) (*RSVPView, error)
	ApplyRSVP(ctx context.Context, token string, submission RSVPSubmission) (*RSVPOutcome, error)
}
