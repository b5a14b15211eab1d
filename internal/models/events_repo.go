package models

import (
	"context"
	"fmt"
)

type EventRepo interface {
	EnsureEvent(ctx context.Context, event Event) (*Event, error)
}

// EnsureEvent upserts the event by name so configuration changes to the
// date or location are picked up on restart.
func (pg *PostgresRepo) EnsureEvent(ctx context.Context, event Event) (*Event, error) {
	var stored Event
	err := pg.db.GetContext(ctx, &stored, `
		INSERT INTO events (name, description, date, location, timezone)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			date = EXCLUDED.date,
			location = EXCLUDED.location,
			timezone = EXCLUDED.timezone
		RETURNING uuid, name, description, date, location, timezone`,
		event.Name, event.Description, event.Date, event.Location, event.Timezone,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure event: %w", err)
	}
	return &stored, nil
}
