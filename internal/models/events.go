package models

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID          uuid.UUID `db:"uuid" json:"id"`
	Name        string    `db:"name" json:"name"`               // e.g., "Wedding Celebration"
	Description *string   `db:"description" json:"description"` // shown on the RSVP page
	Date        time.Time `db:"date" json:"date"`
	Location    *string   `db:"location" json:"location"`
	Timezone    string    `db:"timezone" json:"timezone"` // IANA name, e.g. "Europe/Madrid"
}
