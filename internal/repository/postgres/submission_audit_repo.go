package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"formdesk/internal/domain"
	"formdesk/internal/port"
)

type submissionAuditRepo struct {
	db *sqlx.DB
}

// NewSubmissionAuditRepo creates a new PostgreSQL-backed SubmissionAuditRepository.
func NewSubmissionAuditRepo(db *sqlx.DB) port.SubmissionAuditRepository {
	return &submissionAuditRepo{db: db}
}

func (r *submissionAuditRepo) Create(ctx context.Context, entry *domain.SubmissionAuditEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if len(entry.Changes) == 0 {
		entry.Changes = []byte("{}")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO submission_audit (id, submission_id, form_type, reviewer_id, action, changes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.SubmissionID, entry.FormType, entry.ReviewerID, entry.Action, entry.Changes, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("submissionAuditRepo.Create: %w", err)
	}
	return nil
}

func (r *submissionAuditRepo) ListBySubmission(ctx context.Context, submissionID uuid.UUID, offset, limit int) ([]domain.SubmissionAuditEntry, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM submission_audit WHERE submission_id = $1`, submissionID)
	if err != nil {
		return nil, 0, fmt.Errorf("submissionAuditRepo.ListBySubmission count: %w", err)
	}

	var entries []domain.SubmissionAuditEntry
	err = r.db.SelectContext(ctx, &entries,
		`SELECT * FROM submission_audit
		 WHERE submission_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		submissionID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("submissionAuditRepo.ListBySubmission: %w", err)
	}
	return entries, total, nil
}
