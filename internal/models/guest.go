package models

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	UsersTable          = "users"
	EventsTable         = "events"
	FamiliesTable       = "families"
	GuestsTable         = "guests"
	RSVPInfoTable       = "rsvp_info"
	DietaryOptionsTable = "dietary_options"
	EmailLogsTable      = "email_logs"
)

type GuestStatus string

const (
	StatusPending   GuestStatus = "pending"
	StatusConfirmed GuestStatus = "confirmed"
	StatusDeclined  GuestStatus = "declined"
)

func (s GuestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDeclined:
		return true
	}
	return false
}

// Attending maps a status to the tri-state used by the RSVP form: nil while
// the guest has not answered yet.
func (s GuestStatus) Attending() *bool {
	var attending bool
	switch s {
	case StatusConfirmed:
		attending = true
	case StatusDeclined:
		attending = false
	default:
		return nil
	}
	return &attending
}

func StatusFromAttending(attending bool) GuestStatus {
	if attending {
		return StatusConfirmed
	}
	return StatusDeclined
}

type GuestType string

const (
	GuestTypeAdult GuestType = "adult"
	GuestTypeChild GuestType = "child"
)

type Language string

const (
	LanguageEN Language = "en"
	LanguageES Language = "es"
	LanguageNL Language = "nl"
)

var Languages = []Language{LanguageEN, LanguageES, LanguageNL}

func (l Language) IsValid() bool {
	for _, lang := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

type DietaryType string

const (
	DietaryVegetarian DietaryType = "vegetarian"
	DietaryVegan      DietaryType = "vegan"
	DietaryGlutenFree DietaryType = "gluten_free"
	DietaryDairyFree  DietaryType = "dairy_free"
	DietaryHalal      DietaryType = "halal"
	DietaryKosher     DietaryType = "kosher"
	DietaryNutAllergy DietaryType = "nut_allergy"
	DietaryOther      DietaryType = "other"
)

var DietaryTypes = []DietaryType{
	DietaryVegetarian,
	DietaryVegan,
	DietaryGlutenFree,
	DietaryDairyFree,
	DietaryHalal,
	DietaryKosher,
	DietaryNutAllergy,
	DietaryOther,
}

type DietaryRequirement struct {
	RequirementType DietaryType `db:"requirement_type" json:"requirement_type"`
	Notes           string      `db:"notes" json:"notes,omitempty"`
}

type Family struct {
	ID        uuid.UUID `db:"uuid" json:"id"`
	Name      *string   `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Guest struct {
	ID                uuid.UUID     `db:"uuid" json:"id"`
	UserID            uuid.NullUUID `db:"user_id" json:"user_id"`
	EventID           uuid.NullUUID `db:"event_id" json:"event_id"`
	FirstName         string        `db:"first_name" json:"first_name"`
	LastName          string        `db:"last_name" json:"last_name"`
	Phone             *string       `db:"phone" json:"phone"`
	GuestType         GuestType     `db:"guest_type" json:"guest_type"`
	FamilyID          uuid.NullUUID `db:"family_id" json:"family_id"`
	PlusOneOfID       uuid.NullUUID `db:"plus_one_of_id" json:"plus_one_of_id"`
	BringAPlusOneID   uuid.NullUUID `db:"bring_a_plus_one_id" json:"bring_a_plus_one_id"`
	Notes             *string       `db:"notes" json:"notes"`
	Allergies         *string       `db:"allergies" json:"allergies"`
	PreferredLanguage Language      `db:"preferred_language" json:"preferred_language"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

func (g *Guest) FullName() string {
	name := g.FirstName
	if g.LastName != "" {
		if name != "" {
			name += " "
		}
		name += g.LastName
	}
	if name == "" {
		return "Guest"
	}
	return name
}

// GuestDetails is a guest joined with its user email and RSVP record, the
// shape returned by the admin endpoints.
type GuestDetails struct {
	Guest
	Email       *string     `db:"email" json:"email"`
	Status      GuestStatus `db:"status" json:"status"`
	RSVPToken   string      `db:"rsvp_token" json:"rsvp_token"`
	RSVPLink    string      `db:"rsvp_link" json:"rsvp_link"`
	Active      bool        `db:"active" json:"active"`
	EmailSentOn *time.Time  `db:"email_sent_on" json:"email_sent_on"`
}

type GuestFilter struct {
	Status *GuestStatus
	Offset int
	Limit  int
}

type NewGuest struct {
	Email             string
	FirstName         string
	LastName          string
	Phone             *string
	Notes             *string
	PreferredLanguage Language
	EventID           uuid.NullUUID
	FamilyID          uuid.NullUUID
}

type NewChildGuest struct {
	FamilyID  uuid.UUID
	FirstName string
	LastName  string
	Phone     *string
	EventID   uuid.NullUUID
}

// GuestUpdate carries a partial update; nil fields are left untouched.
type GuestUpdate struct {
	Email             *string    `json:"email" validate:"omitempty,email"`
	FirstName         *string    `json:"first_name" validate:"omitempty,min=1"`
	LastName          *string    `json:"last_name" validate:"omitempty,min=1"`
	Phone             *string    `json:"phone"`
	Notes             *string    `json:"notes"`
	Allergies         *string    `json:"allergies"`
	PreferredLanguage *Language  `json:"preferred_language" validate:"omitempty,oneof=en es nl"`
	FamilyID          *uuid.UUID `json:"family_id"`
}

// RSVPLink builds the public RSVP URL handed out in invitations.
func RSVPLink(frontendURL string, lang Language, token string, plusOne bool) string {
	link := fmt.Sprintf("%s/%s/rsvp/?token=%s", frontendURL, lang, url.QueryEscape(token))
	if plusOne {
		link += "&plus_one=true"
	}
	return link
}
