package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type UserRepo interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	EnsureSuperuser(ctx context.Context, email, hashedPassword string) (*User, error)
}

const selectUserColumns = `uuid, email, hashed_password, is_active, is_superuser, created_at, updated_at`

func (pg *PostgresRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := pg.db.GetContext(ctx, &user,
		`SELECT `+selectUserColumns+` FROM users WHERE email = $1`,
		normalizeEmail(email),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

// EnsureSuperuser creates the administrator account or resets its password
// and flags when it already exists.
func (pg *PostgresRepo) EnsureSuperuser(ctx context.Context, email, hashedPassword string) (*User, error) {
	var user User
	err := pg.db.GetContext(ctx, &user, `
		INSERT INTO users (email, hashed_password, is_active, is_superuser)
		VALUES ($1, $2, true, true)
		ON CONFLICT (email) DO UPDATE SET
			hashed_password = EXCLUDED.hashed_password,
			is_active = true,
			is_superuser = true,
			updated_at = now()
		RETURNING `+selectUserColumns,
		normalizeEmail(email), hashedPassword,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure superuser: %w", err)
	}
	return &user, nil
}

// getOrCreateUser returns the id of the user owning email, inserting one if
// needed. The no-op update makes RETURNING yield the existing row.
func getOrCreateUser(ctx context.Context, q sqlx.QueryerContext, email string) (uuid.UUID, error) {
	var id uuid.UUID
	err := sqlx.GetContext(ctx, q, &id, `
		INSERT INTO users (email) VALUES ($1)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING uuid`,
		normalizeEmail(email),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("get or create user: %w", err)
	}
	return id, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
