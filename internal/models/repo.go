package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var Validate = newValidator()

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var (
	ErrNotFound                 = errors.New("not found")
	ErrGuestAlreadyExists       = errors.New("guest already exists")
	ErrCannotAddPlusOne         = errors.New("a guest who is a plus-one cannot add their own plus-one")
	ErrCannotChangePlusOneEmail = errors.New("cannot change the email of a guest's plus-one")
	ErrNotFamilyMember          = errors.New("guest is not a member of this family")
)

const uniqueViolation = "23505"

type PostgresRepo struct {
	db          *sqlx.DB
	frontendURL string
}

func PostgresNewRepo(db *sqlx.DB, frontendURL string) *PostgresRepo {
	return &PostgresRepo{
		db:          db,
		frontendURL: frontendURL,
	}
}

// withTx runs fn inside a transaction. Any error from fn rolls the whole
// transaction back.
func (pg *PostgresRepo) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := pg.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
