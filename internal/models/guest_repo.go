package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type GuestRepo interface {
	ListGuests(ctx context.Context, filter GuestFilter) ([]GuestDetails, int, error)
	GetGuest(ctx context.Context, id uuid.UUID) (*GuestDetails, error)
	FindGuestByEmail(ctx context.Context, email string) (*GuestDetails, error)
	CreateGuest(ctx context.Context, guest NewGuest) (*GuestDetails, error)
	UpdateGuest(ctx context.Context, id uuid.UUID, update GuestUpdate) (*GuestDetails, error)
	DeleteGuest(ctx context.Context, id uuid.UUID) error
	MarkInvitationSent(ctx context.Context, guestID uuid.UUID, at time.Time) error
	SetPreferredLanguage(ctx context.Context, guestID uuid.UUID, lang Language) error
	CreateFamily(ctx context.Context, name *string) (*Family, error)
	CreateChildGuest(ctx context.Context, child NewChildGuest) (*GuestDetails, error)
}

const selectGuestDetails = `
	SELECT g.uuid, g.user_id, g.event_id, g.first_name, g.last_name, g.phone, g.guest_type,
		g.family_id, g.plus_one_of_id, g.bring_a_plus_one_id, g.notes, g.allergies,
		g.preferred_language, g.created_at, g.updated_at,
		u.email,
		COALESCE(r.status, 'pending') AS status,
		COALESCE(r.rsvp_token, '') AS rsvp_token,
		COALESCE(r.rsvp_link, '') AS rsvp_link,
		COALESCE(r.active, false) AS active,
		r.email_sent_on
	FROM guests g
	LEFT JOIN users u ON u.uuid = g.user_id
	LEFT JOIN rsvp_info r ON r.guest_id = g.uuid`

func (pg *PostgresRepo) ListGuests(ctx context.Context, filter GuestFilter) ([]GuestDetails, int, error) {
	var status *string
	if filter.Status != nil {
		s := string(*filter.Status)
		status = &s
	}

	var total int
	if err := pg.db.GetContext(ctx, &total, `
		SELECT count(*)
		FROM guests g
		LEFT JOIN rsvp_info r ON r.guest_id = g.uuid
		WHERE ($1::text IS NULL OR COALESCE(r.status, 'pending') = $1::text)`,
		status,
	); err != nil {
		return nil, 0, fmt.Errorf("count guests: %w", err)
	}

	guests := []GuestDetails{}
	if err := pg.db.SelectContext(ctx, &guests, selectGuestDetails+`
		WHERE ($1::text IS NULL OR COALESCE(r.status, 'pending') = $1::text)
		ORDER BY g.created_at, g.uuid
		LIMIT $2 OFFSET $3`,
		status, filter.Limit, filter.Offset,
	); err != nil {
		return nil, 0, fmt.Errorf("list guests: %w", err)
	}
	return guests, total, nil
}

func (pg *PostgresRepo) GetGuest(ctx context.Context, id uuid.UUID) (*GuestDetails, error) {
	return getGuestDetails(ctx, pg.db, id)
}

func (pg *PostgresRepo) FindGuestByEmail(ctx context.Context, email string) (*GuestDetails, error) {
	var guest GuestDetails
	err := pg.db.GetContext(ctx, &guest, selectGuestDetails+` WHERE u.email = $1`, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find guest by email: %w", err)
	}
	return &guest, nil
}

// CreateGuest registers an adult guest with their own user account and a
// fresh RSVP token. A user can own at most one guest.
func (pg *PostgresRepo) CreateGuest(ctx context.Context, ng NewGuest) (*GuestDetails, error) {
	var created *GuestDetails
	err := pg.withTx(ctx, func(tx *sqlx.Tx) error {
		userID, err := getOrCreateUser(ctx, tx, ng.Email)
		if err != nil {
			return err
		}

		var guestID uuid.UUID
		err = tx.GetContext(ctx, &guestID, `
			INSERT INTO guests (user_id, event_id, first_name, last_name, phone, guest_type, family_id, notes, preferred_language)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING uuid`,
			userID, ng.EventID, ng.FirstName, ng.LastName, ng.Phone, GuestTypeAdult, ng.FamilyID, ng.Notes, ng.PreferredLanguage,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrGuestAlreadyExists
			}
			return fmt.Errorf("insert guest: %w", err)
		}

		token := uuid.NewString()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO rsvp_info (guest_id, status, active, rsvp_token, rsvp_link)
			VALUES ($1, $2, true, $3, $4)`,
			guestID, StatusPending, token, RSVPLink(pg.frontendURL, ng.PreferredLanguage, token, false),
		); err != nil {
			return fmt.Errorf("insert rsvp: %w", err)
		}

		created, err = getGuestDetails(ctx, tx, guestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (pg *PostgresRepo) UpdateGuest(ctx context.Context, id uuid.UUID, update GuestUpdate) (*GuestDetails, error) {
	var updated *GuestDetails
	err := pg.withTx(ctx, func(tx *sqlx.Tx) error {
		var userID uuid.NullUUID
		if err := tx.GetContext(ctx, &userID, `SELECT user_id FROM guests WHERE uuid = $1 FOR UPDATE`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock guest: %w", err)
		}

		if update.Email != nil {
			if err := changeGuestEmail(ctx, tx, id, userID, *update.Email); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE guests SET
				first_name = COALESCE($1, first_name),
				last_name = COALESCE($2, last_name),
				phone = COALESCE($3, phone),
				notes = COALESCE($4, notes),
				allergies = COALESCE($5, allergies),
				preferred_language = COALESCE($6, preferred_language),
				family_id = COALESCE($7, family_id),
				updated_at = now()
			WHERE uuid = $8`,
			update.FirstName, update.LastName, update.Phone, update.Notes, update.Allergies,
			update.PreferredLanguage, update.FamilyID, id,
		); err != nil {
			return fmt.Errorf("update guest: %w", err)
		}

		if update.PreferredLanguage != nil {
			if err := pg.relinkRSVP(ctx, tx, id, *update.PreferredLanguage); err != nil {
				return err
			}
		}

		var err error
		updated, err = getGuestDetails(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func changeGuestEmail(ctx context.Context, tx *sqlx.Tx, guestID uuid.UUID, userID uuid.NullUUID, email string) error {
	if userID.Valid {
		_, err := tx.ExecContext(ctx,
			`UPDATE users SET email = $1, updated_at = now() WHERE uuid = $2`,
			normalizeEmail(email), userID.UUID,
		)
		if isUniqueViolation(err) {
			return ErrGuestAlreadyExists
		}
		if err != nil {
			return fmt.Errorf("update user email: %w", err)
		}
		return nil
	}

	newUserID, err := getOrCreateUser(ctx, tx, email)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE guests SET user_id = $1 WHERE uuid = $2`, newUserID, guestID)
	if isUniqueViolation(err) {
		return ErrGuestAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("attach user: %w", err)
	}
	return nil
}

// DeleteGuest removes the guest; its RSVP and dietary options cascade and
// plus-one links are cleared by the foreign keys.
func (pg *PostgresRepo) DeleteGuest(ctx context.Context, id uuid.UUID) error {
	res, err := pg.db.ExecContext(ctx, `DELETE FROM guests WHERE uuid = $1`, id)
	if err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (pg *PostgresRepo) MarkInvitationSent(ctx context.Context, guestID uuid.UUID, at time.Time) error {
	res, err := pg.db.ExecContext(ctx,
		`UPDATE rsvp_info SET email_sent_on = $1, updated_at = now() WHERE guest_id = $2`,
		at, guestID,
	)
	if err != nil {
		return fmt.Errorf("mark invitation sent: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (pg *PostgresRepo) SetPreferredLanguage(ctx context.Context, guestID uuid.UUID, lang Language) error {
	return pg.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE guests SET preferred_language = $1, updated_at = now() WHERE uuid = $2`,
			lang, guestID,
		)
		if err != nil {
			return fmt.Errorf("set preferred language: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return pg.relinkRSVP(ctx, tx, guestID, lang)
	})
}

// relinkRSVP rebuilds the RSVP link so it points at the guest's language.
func (pg *PostgresRepo) relinkRSVP(ctx context.Context, tx *sqlx.Tx, guestID uuid.UUID, lang Language) error {
	var rsvp struct {
		Token     *string       `db:"rsvp_token"`
		PlusOneOf uuid.NullUUID `db:"plus_one_of_id"`
	}
	err := tx.GetContext(ctx, &rsvp, `
		SELECT r.rsvp_token, g.plus_one_of_id
		FROM rsvp_info r JOIN guests g ON g.uuid = r.guest_id
		WHERE r.guest_id = $1`,
		guestID,
	)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && rsvp.Token == nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load rsvp token: %w", err)
	}

	link := RSVPLink(pg.frontendURL, lang, *rsvp.Token, rsvp.PlusOneOf.Valid)
	if _, err := tx.ExecContext(ctx,
		`UPDATE rsvp_info SET rsvp_link = $1, updated_at = now() WHERE guest_id = $2`,
		link, guestID,
	); err != nil {
		return fmt.Errorf("update rsvp link: %w", err)
	}
	return nil
}

func (pg *PostgresRepo) CreateFamily(ctx context.Context, name *string) (*Family, error) {
	var family Family
	if err := pg.db.GetContext(ctx, &family,
		`INSERT INTO families (name) VALUES ($1) RETURNING uuid, name, created_at, updated_at`,
		name,
	); err != nil {
		return nil, fmt.Errorf("create family: %w", err)
	}
	return &family, nil
}

// CreateChildGuest adds a child to a family. Children have no user account
// and no token of their own; they RSVP through an adult of the family.
func (pg *PostgresRepo) CreateChildGuest(ctx context.Context, child NewChildGuest) (*GuestDetails, error) {
	var created *GuestDetails
	err := pg.withTx(ctx, func(tx *sqlx.Tx) error {
		var familyID uuid.UUID
		if err := tx.GetContext(ctx, &familyID, `SELECT uuid FROM families WHERE uuid = $1`, child.FamilyID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("load family: %w", err)
		}

		var guestID uuid.UUID
		if err := tx.GetContext(ctx, &guestID, `
			INSERT INTO guests (event_id, first_name, last_name, phone, guest_type, family_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING uuid`,
			child.EventID, child.FirstName, child.LastName, child.Phone, GuestTypeChild, familyID,
		); err != nil {
			return fmt.Errorf("insert child guest: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rsvp_info (guest_id, status, active) VALUES ($1, $2, true)`,
			guestID, StatusPending,
		); err != nil {
			return fmt.Errorf("insert child rsvp: %w", err)
		}

		var err error
		created, err = getGuestDetails(ctx, tx, guestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func getGuestDetails(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*GuestDetails, error) {
	var guest GuestDetails
	if err := sqlx.GetContext(ctx, q, &guest, selectGuestDetails+` WHERE g.uuid = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get guest: %w", err)
	}
	return &guest, nil
}
