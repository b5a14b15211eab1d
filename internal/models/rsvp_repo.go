package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// rsvpRow is the guest + RSVP pair addressed by a token.
type rsvpRow struct {
	GuestID           uuid.UUID     `db:"guest_id"`
	EventID           uuid.NullUUID `db:"event_id"`
	Token             string        `db:"rsvp_token"`
	FirstName         string        `db:"first_name"`
	LastName          string        `db:"last_name"`
	Phone             *string       `db:"phone"`
	Allergies         *string       `db:"allergies"`
	Status            GuestStatus   `db:"status"`
	PreferredLanguage Language      `db:"preferred_language"`
	FamilyID          uuid.NullUUID `db:"family_id"`
	PlusOneOfID       uuid.NullUUID `db:"plus_one_of_id"`
	BringAPlusOneID   uuid.NullUUID `db:"bring_a_plus_one_id"`
}

// lockedGuest is the row set locked for the duration of an RSVP submission.
type lockedGuest struct {
	GuestID           uuid.UUID     `db:"guest_id"`
	RSVPID            uuid.UUID     `db:"rsvp_id"`
	EventID           uuid.NullUUID `db:"event_id"`
	FamilyID          uuid.NullUUID `db:"family_id"`
	PlusOneOfID       uuid.NullUUID `db:"plus_one_of_id"`
	BringAPlusOneID   uuid.NullUUID `db:"bring_a_plus_one_id"`
	PreferredLanguage Language      `db:"preferred_language"`
	UserID            uuid.NullUUID `db:"user_id"`
	Email             *string       `db:"email"`
}

type memberDietaryRow struct {
	GuestID uuid.UUID `db:"guest_id"`
	DietaryRequirement
}

type familyMemberRow struct {
	GuestID   uuid.UUID    `db:"guest_id"`
	FirstName string       `db:"first_name"`
	LastName  string       `db:"last_name"`
	GuestType GuestType    `db:"guest_type"`
	Allergies *string      `db:"allergies"`
	Status    *GuestStatus `db:"status"`
}

const (
	selectRSVPByToken = `
		SELECT g.uuid AS guest_id, g.event_id, COALESCE(r.rsvp_token, '') AS rsvp_token,
			g.first_name, g.last_name, g.phone, g.allergies, r.status, g.preferred_language,
			g.family_id, g.plus_one_of_id, g.bring_a_plus_one_id
		FROM rsvp_info r
		JOIN guests g ON g.uuid = r.guest_id
		WHERE r.rsvp_token = $1 AND r.active`

	lockRSVPByToken = `
		SELECT g.uuid AS guest_id, r.uuid AS rsvp_id, g.event_id, g.family_id,
			g.plus_one_of_id, g.bring_a_plus_one_id, g.preferred_language,
			u.uuid AS user_id, u.email
		FROM rsvp_info r
		JOIN guests g ON g.uuid = r.guest_id
		LEFT JOIN users u ON u.uuid = g.user_id
		WHERE r.rsvp_token = $1 AND r.active
		FOR UPDATE OF r, g`

	selectDietary = `
		SELECT requirement_type, COALESCE(notes, '') AS notes
		FROM dietary_options
		WHERE guest_id = $1
		ORDER BY created_at, uuid`

	selectFamilyMembers = `
		SELECT g.uuid AS guest_id, g.first_name, g.last_name, g.guest_type, g.allergies, r.status
		FROM guests g
		LEFT JOIN rsvp_info r ON r.guest_id = g.uuid
		WHERE g.family_id = $1 AND g.uuid <> $2
		ORDER BY g.guest_type, g.first_name, g.uuid`

	selectFamilyDietary = `
		SELECT d.guest_id, d.requirement_type, COALESCE(d.notes, '') AS notes
		FROM dietary_options d
		JOIN guests g ON g.uuid = d.guest_id
		WHERE g.family_id = $1 AND g.uuid <> $2
		ORDER BY d.created_at, d.uuid`

	selectPlusOne = `
		SELECT u.email, g.first_name, g.last_name
		FROM guests g
		LEFT JOIN users u ON u.uuid = g.user_id
		WHERE g.uuid = $1`

	selectEvent = `
		SELECT uuid, name, description, date, location, timezone
		FROM events
		WHERE uuid = $1`
)

func (pg *PostgresRepo) GetRSVPInfo(ctx context.Context, token string) (*RSVPView, error) {
	return loadRSVPView(ctx, pg.db, token)
}

// ApplyRSVP writes a validated submission. Every change happens in a single
// transaction; the returned view reflects the committed state.
func (pg *PostgresRepo) ApplyRSVP(ctx context.Context, token string, sub RSVPSubmission) (*RSVPOutcome, error) {
	var outcome RSVPOutcome

	err := pg.withTx(ctx, func(tx *sqlx.Tx) error {
		var host lockedGuest
		if err := tx.GetContext(ctx, &host, lockRSVPByToken, token); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock rsvp: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE rsvp_info SET status = $1, updated_at = now() WHERE uuid = $2`,
			StatusFromAttending(sub.Attending), host.RSVPID,
		); err != nil {
			return fmt.Errorf("update rsvp status: %w", err)
		}

		if err := updateGuestDetails(ctx, tx, host.GuestID, sub.FirstName, sub.LastName, sub.Phone, sub.Allergies); err != nil {
			return err
		}

		var dietary []DietaryRequirement
		if sub.Attending {
			dietary = sub.DietaryRequirements
		}
		if err := replaceDietary(ctx, tx, host.GuestID, dietary); err != nil {
			return err
		}

		newPlusOne, err := pg.applyPlusOne(ctx, tx, &host, sub)
		if err != nil {
			return err
		}

		if err := applyFamilyUpdates(ctx, tx, &host, sub.FamilyMemberUpdates); err != nil {
			return err
		}

		view, err := loadRSVPView(ctx, tx, token)
		if err != nil {
			return err
		}

		outcome = RSVPOutcome{
			View:       view,
			GuestEmail: host.Email,
			UserID:     host.UserID,
			NewPlusOne: newPlusOne,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (pg *PostgresRepo) applyPlusOne(ctx context.Context, tx *sqlx.Tx, host *lockedGuest, sub RSVPSubmission) (*NewPlusOne, error) {
	if !sub.Attending || sub.PlusOne == nil {
		if host.BringAPlusOneID.Valid {
			return nil, detachPlusOne(ctx, tx, host)
		}
		return nil, nil
	}

	if host.PlusOneOfID.Valid {
		return nil, ErrCannotAddPlusOne
	}

	p := sub.PlusOne
	if host.BringAPlusOneID.Valid {
		return nil, updateExistingPlusOne(ctx, tx, host.BringAPlusOneID.UUID, p)
	}

	userID, err := getOrCreateUser(ctx, tx, p.Email)
	if err != nil {
		return nil, err
	}

	var existing struct {
		ID          uuid.UUID     `db:"uuid"`
		PlusOneOfID uuid.NullUUID `db:"plus_one_of_id"`
	}
	err = tx.GetContext(ctx, &existing, `SELECT uuid, plus_one_of_id FROM guests WHERE user_id = $1`, userID)
	switch {
	case err == nil:
		if existing.ID == host.GuestID {
			return nil, ErrCannotAddPlusOne
		}
		if existing.PlusOneOfID.Valid && existing.PlusOneOfID.UUID == host.GuestID {
			// Previously detached plus-one of this host.
			return nil, relinkPlusOne(ctx, tx, host, existing.ID, p)
		}
		// Already invited in their own right.
		return nil, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("find guest by user: %w", err)
	}

	var plusOneID uuid.UUID
	if err := tx.GetContext(ctx, &plusOneID, `
		INSERT INTO guests (user_id, event_id, first_name, last_name, guest_type, plus_one_of_id, allergies, preferred_language)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
		RETURNING uuid`,
		userID, host.EventID, p.FirstName, p.LastName, GuestTypeAdult, host.GuestID, derefString(p.Allergies), host.PreferredLanguage,
	); err != nil {
		return nil, fmt.Errorf("insert plus-one guest: %w", err)
	}

	if err := replaceDietary(ctx, tx, plusOneID, p.DietaryRequirements); err != nil {
		return nil, err
	}

	token := uuid.NewString()
	link := RSVPLink(pg.frontendURL, host.PreferredLanguage, token, true)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rsvp_info (guest_id, status, active, rsvp_token, rsvp_link)
		VALUES ($1, $2, true, $3, $4)`,
		plusOneID, StatusPending, token, link,
	); err != nil {
		return nil, fmt.Errorf("insert plus-one rsvp: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE guests SET bring_a_plus_one_id = $1, updated_at = now() WHERE uuid = $2`,
		plusOneID, host.GuestID,
	); err != nil {
		return nil, fmt.Errorf("link plus-one: %w", err)
	}

	return &NewPlusOne{
		GuestID:   plusOneID,
		UserID:    userID,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Link:      link,
		Language:  host.PreferredLanguage,
	}, nil
}

func updateExistingPlusOne(ctx context.Context, tx *sqlx.Tx, plusOneID uuid.UUID, p *PlusOneSubmission) error {
	var email *string
	if err := tx.GetContext(ctx, &email,
		`SELECT u.email FROM guests g LEFT JOIN users u ON u.uuid = g.user_id WHERE g.uuid = $1`,
		plusOneID,
	); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("load plus-one email: %w", err)
	}
	if email != nil && !strings.EqualFold(*email, p.Email) {
		return ErrCannotChangePlusOneEmail
	}
	return refreshPlusOne(ctx, tx, plusOneID, p)
}

// relinkPlusOne attaches a detached plus-one to its host again.
func relinkPlusOne(ctx context.Context, tx *sqlx.Tx, host *lockedGuest, plusOneID uuid.UUID, p *PlusOneSubmission) error {
	if err := refreshPlusOne(ctx, tx, plusOneID, p); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE guests SET bring_a_plus_one_id = $1, updated_at = now() WHERE uuid = $2`,
		plusOneID, host.GuestID,
	); err != nil {
		return fmt.Errorf("link plus-one: %w", err)
	}
	host.BringAPlusOneID = uuid.NullUUID{UUID: plusOneID, Valid: true}
	return nil
}

// refreshPlusOne overwrites the plus-one's details and dietary options and
// makes their RSVP active.
func refreshPlusOne(ctx context.Context, tx *sqlx.Tx, plusOneID uuid.UUID, p *PlusOneSubmission) error {
	if err := updateGuestDetails(ctx, tx, plusOneID, p.FirstName, p.LastName, nil, p.Allergies); err != nil {
		return err
	}
	if err := replaceDietary(ctx, tx, plusOneID, p.DietaryRequirements); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE rsvp_info SET active = true, updated_at = now() WHERE guest_id = $1`,
		plusOneID,
	); err != nil {
		return fmt.Errorf("reactivate plus-one rsvp: %w", err)
	}
	return nil
}

func detachPlusOne(ctx context.Context, tx *sqlx.Tx, host *lockedGuest) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE rsvp_info SET active = false, updated_at = now() WHERE guest_id = $1`,
		host.BringAPlusOneID.UUID,
	); err != nil {
		return fmt.Errorf("deactivate plus-one rsvp: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE guests SET bring_a_plus_one_id = NULL, updated_at = now() WHERE uuid = $1`,
		host.GuestID,
	); err != nil {
		return fmt.Errorf("detach plus-one: %w", err)
	}
	return nil
}

func applyFamilyUpdates(ctx context.Context, tx *sqlx.Tx, host *lockedGuest, updates map[uuid.UUID]FamilyMemberUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	if !host.FamilyID.Valid {
		return ErrNotFamilyMember
	}

	ids := make([]uuid.UUID, 0, len(updates))
	for id := range updates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	for _, id := range ids {
		if id == host.GuestID {
			return ErrNotFamilyMember
		}

		var familyID uuid.NullUUID
		err := tx.GetContext(ctx, &familyID, `SELECT family_id FROM guests WHERE uuid = $1 FOR UPDATE`, id)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && familyID != host.FamilyID) {
			return fmt.Errorf("%w: %s", ErrNotFamilyMember, id)
		}
		if err != nil {
			return fmt.Errorf("load family member: %w", err)
		}

		update := updates[id]
		if _, err := tx.ExecContext(ctx,
			`UPDATE rsvp_info SET status = $1, updated_at = now() WHERE guest_id = $2`,
			StatusFromAttending(update.Attending), id,
		); err != nil {
			return fmt.Errorf("update family member status: %w", err)
		}

		if update.GuestInfo != nil {
			if err := updateGuestDetails(ctx, tx, id, update.GuestInfo.FirstName, update.GuestInfo.LastName, update.GuestInfo.Phone, update.Allergies); err != nil {
				return err
			}
		} else if update.Allergies != nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE guests SET allergies = NULLIF($1, ''), updated_at = now() WHERE uuid = $2`,
				*update.Allergies, id,
			); err != nil {
				return fmt.Errorf("update family member allergies: %w", err)
			}
		}

		var dietary []DietaryRequirement
		if update.Attending {
			dietary = update.DietaryRequirements
		}
		if err := replaceDietary(ctx, tx, id, dietary); err != nil {
			return err
		}
	}
	return nil
}

// updateGuestDetails overwrites names; nil phone or allergies keep the stored
// value and an empty string clears it.
func updateGuestDetails(ctx context.Context, tx *sqlx.Tx, guestID uuid.UUID, firstName, lastName string, phone, allergies *string) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE guests SET
			first_name = $1,
			last_name = $2,
			phone = CASE WHEN $3::text IS NULL THEN phone ELSE NULLIF($3::text, '') END,
			allergies = CASE WHEN $4::text IS NULL THEN allergies ELSE NULLIF($4::text, '') END,
			updated_at = now()
		WHERE uuid = $5`,
		firstName, lastName, phone, allergies, guestID,
	); err != nil {
		return fmt.Errorf("update guest: %w", err)
	}
	return nil
}

func replaceDietary(ctx context.Context, tx *sqlx.Tx, guestID uuid.UUID, reqs []DietaryRequirement) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM dietary_options WHERE guest_id = $1`, guestID); err != nil {
		return fmt.Errorf("clear dietary options: %w", err)
	}
	for _, req := range reqs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO dietary_options (guest_id, requirement_type, notes) VALUES ($1, $2, NULLIF($3, ''))`,
			guestID, req.RequirementType, req.Notes,
		); err != nil {
			return fmt.Errorf("insert dietary option: %w", err)
		}
	}
	return nil
}

func loadRSVPView(ctx context.Context, q sqlx.QueryerContext, token string) (*RSVPView, error) {
	var row rsvpRow
	if err := sqlx.GetContext(ctx, q, &row, selectRSVPByToken, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load rsvp: %w", err)
	}

	view := &RSVPView{
		GuestID:             row.GuestID,
		Token:               row.Token,
		FirstName:           row.FirstName,
		LastName:            row.LastName,
		Phone:               row.Phone,
		Allergies:           row.Allergies,
		Status:              row.Status,
		Attending:           row.Status.Attending(),
		PreferredLanguage:   row.PreferredLanguage,
		IsPlusOne:           row.PlusOneOfID.Valid,
		CanBringPlusOne:     !row.PlusOneOfID.Valid,
		FamilyID:            row.FamilyID,
		DietaryRequirements: []DietaryRequirement{},
		FamilyMembers:       []FamilyMemberView{},
	}

	if err := sqlx.SelectContext(ctx, q, &view.DietaryRequirements, selectDietary, row.GuestID); err != nil {
		return nil, fmt.Errorf("load dietary options: %w", err)
	}

	if row.FamilyID.Valid {
		members, err := loadFamilyMembers(ctx, q, row.FamilyID.UUID, row.GuestID)
		if err != nil {
			return nil, err
		}
		view.FamilyMembers = members
	}

	if row.BringAPlusOneID.Valid {
		var plusOne PlusOneView
		err := sqlx.GetContext(ctx, q, &plusOne, selectPlusOne, row.BringAPlusOneID.UUID)
		switch {
		case err == nil:
			view.PlusOne = &plusOne
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("load plus-one: %w", err)
		}
	}

	if row.EventID.Valid {
		var event Event
		err := sqlx.GetContext(ctx, q, &event, selectEvent, row.EventID.UUID)
		switch {
		case err == nil:
			view.Event = &event
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("load event: %w", err)
		}
	}

	return view, nil
}

func loadFamilyMembers(ctx context.Context, q sqlx.QueryerContext, familyID, exclude uuid.UUID) ([]FamilyMemberView, error) {
	var rows []familyMemberRow
	if err := sqlx.SelectContext(ctx, q, &rows, selectFamilyMembers, familyID, exclude); err != nil {
		return nil, fmt.Errorf("load family members: %w", err)
	}

	var dietaryRows []memberDietaryRow
	if err := sqlx.SelectContext(ctx, q, &dietaryRows, selectFamilyDietary, familyID, exclude); err != nil {
		return nil, fmt.Errorf("load family dietary options: %w", err)
	}
	byGuest := make(map[uuid.UUID][]DietaryRequirement, len(rows))
	for _, d := range dietaryRows {
		byGuest[d.GuestID] = append(byGuest[d.GuestID], d.DietaryRequirement)
	}

	members := make([]FamilyMemberView, 0, len(rows))
	for _, r := range rows {
		m := FamilyMemberView{
			GuestID:             r.GuestID,
			FirstName:           r.FirstName,
			LastName:            r.LastName,
			GuestType:           r.GuestType,
			Status:              r.Status,
			Allergies:           r.Allergies,
			DietaryRequirements: byGuest[r.GuestID],
		}
		if r.Status != nil {
			m.Attending = r.Status.Attending()
		}
		if m.DietaryRequirements == nil {
			m.DietaryRequirements = []DietaryRequirement{}
		}
		members = append(members, m)
	}
	return members, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
