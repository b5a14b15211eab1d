package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EmailType string

const (
	EmailTypeInvitation    EmailType = "invitation"
	EmailTypeConfirmation  EmailType = "confirmation"
	EmailTypePlusOneInvite EmailType = "plus_one_invite"
)

type EmailStatus string

const (
	EmailStatusPending EmailStatus = "pending"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
)

type EmailLog struct {
	ID                uuid.UUID     `db:"uuid" json:"id"`
	ProviderMessageID *string       `db:"provider_message_id" json:"provider_message_id"`
	ToAddress         string        `db:"to_address" json:"to_address"`
	FromAddress       string        `db:"from_address" json:"from_address"`
	Subject           string        `db:"subject" json:"subject"`
	HTMLBody          *string       `db:"html_body" json:"html_body,omitempty"`
	TextBody          *string       `db:"text_body" json:"text_body,omitempty"`
	EmailType         EmailType     `db:"email_type" json:"email_type"`
	GuestID           uuid.NullUUID `db:"guest_id" json:"guest_id"`
	UserID            uuid.NullUUID `db:"user_id" json:"user_id"`
	Status            EmailStatus   `db:"status" json:"status"`
	Language          Language      `db:"language" json:"language"`
	ErrorMessage      *string       `db:"error_message" json:"error_message"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

type NewEmailLog struct {
	ToAddress   string
	FromAddress string
	Subject     string
	HTMLBody    string
	TextBody    string
	EmailType   EmailType
	GuestID     uuid.NullUUID
	UserID      uuid.NullUUID
	Language    Language
}

type EmailLogRepo interface {
	CreateEmailLog(ctx context.Context, log NewEmailLog) (uuid.UUID, error)
	MarkEmailSent(ctx context.Context, id uuid.UUID, providerMessageID string) error
	MarkEmailFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	ListEmailLogs(ctx context.Context, limit, offset int) ([]EmailLog, int, error)
}

func (pg *PostgresRepo) CreateEmailLog(ctx context.Context, l NewEmailLog) (uuid.UUID, error) {
	var id uuid.UUID
	if err := pg.db.GetContext(ctx, &id, `
		INSERT INTO email_logs (to_address, from_address, subject, html_body, text_body, email_type, guest_id, user_id, status, language)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7, $8, $9, $10)
		RETURNING uuid`,
		l.ToAddress, l.FromAddress, l.Subject, l.HTMLBody, l.TextBody, l.EmailType, l.GuestID, l.UserID, EmailStatusPending, l.Language,
	); err != nil {
		return uuid.Nil, fmt.Errorf("create email log: %w", err)
	}
	return id, nil
}

func (pg *PostgresRepo) MarkEmailSent(ctx context.Context, id uuid.UUID, providerMessageID string) error {
	if _, err := pg.db.ExecContext(ctx, `
		UPDATE email_logs
		SET status = $1, provider_message_id = NULLIF($2, ''), error_message = NULL, updated_at = now()
		WHERE uuid = $3`,
		EmailStatusSent, providerMessageID, id,
	); err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}
	return nil
}

func (pg *PostgresRepo) MarkEmailFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	if _, err := pg.db.ExecContext(ctx,
		`UPDATE email_logs SET status = $1, error_message = $2, updated_at = now() WHERE uuid = $3`,
		EmailStatusFailed, errMsg, id,
	); err != nil {
		return fmt.Errorf("mark email failed: %w", err)
	}
	return nil
}

func (pg *PostgresRepo) ListEmailLogs(ctx context.Context, limit, offset int) ([]EmailLog, int, error) {
	var total int
	if err := pg.db.GetContext(ctx, &total, `SELECT count(*) FROM email_logs`); err != nil {
		return nil, 0, fmt.Errorf("count email logs: %w", err)
	}

	logs := []EmailLog{}
	if err := pg.db.SelectContext(ctx, &logs, `
		SELECT uuid, provider_message_id, to_address, from_address, subject, html_body, text_body,
			email_type, guest_id, user_id, status, language, error_message, created_at, updated_at
		FROM email_logs
		ORDER BY created_at DESC, uuid
		LIMIT $1 OFFSET $2`,
		limit, offset,
	); err != nil {
		return nil, 0, fmt.Errorf("list email logs: %w", err)
	}
	return logs, total, nil
}
