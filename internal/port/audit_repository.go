package port

import (
	"context"

	"github.com/google/uuid"

	"formdesk/internal/domain"
)

// SubmissionAuditRepository defines the contract for submission audit log persistence.
type SubmissionAuditRepository interface {
	Create(ctx context.Context, entry *domain.SubmissionAuditEntry) error
	ListBySubmission(ctx context.Context, submissionID uuid.UUID, offset, limit int) ([]domain.SubmissionAuditEntry, int, error)
}
