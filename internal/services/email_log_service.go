package services

import (
	"context"

	"github.com/joshua-takyi/rsvp/internal/models"
)

type EmailLogService struct {
	logs models.EmailLogRepo
}

func NewEmailLogService(logs models.EmailLogRepo) *EmailLogService {
	return &EmailLogService{logs: logs}
}

// ListEmailLogs returns the newest delivery attempts first.
func (es *EmailLogService) ListEmailLogs(ctx context.Context, offset, limit int) ([]models.EmailLog, int, error) {
	offset, limit = Page(offset, limit)
	return es.logs.ListEmailLogs(ctx, limit, offset)
}
