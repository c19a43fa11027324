package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"formdesk/internal/domain"
	"formdesk/internal/port"
)

const submissionColumns = `id, form_type, category, status, data, submitter_email, client_timestamp,
	reviewer_comment, reviewed_by, reviewed_at, notified_at, created_at, updated_at`

// claimLease is how long a claimed row stays invisible to other pollers
// before it becomes claimable again.
const claimLease = 5 * time.Minute

type submissionRepo struct {
	db *sqlx.DB
}

// NewSubmissionRepo creates a new PostgreSQL-backed SubmissionRepository.
func NewSubmissionRepo(db *sqlx.DB) port.SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, sub *domain.Submission) error {
	now := time.Now().UTC()
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if len(sub.Data) == 0 {
		sub.Data = []byte("{}")
	}

	query := `INSERT INTO submissions (id, form_type, category, status, data, submitter_email,
		client_timestamp, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		sub.ID, sub.FormType, sub.Category, sub.Status, sub.Data, sub.SubmitterEmail,
		sub.ClientTimestamp, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("submissionRepo.Create: %w", err)
	}
	return nil
}

func (r *submissionRepo) GetByID(ctx context.Context, formType string, id uuid.UUID) (*domain.Submission, error) {
	var sub domain.Submission
	err := r.db.GetContext(ctx, &sub,
		"SELECT "+submissionColumns+" FROM submissions WHERE id = $1 AND form_type = $2", id, formType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("submissionRepo.GetByID: %w", err)
	}
	return &sub, nil
}

func listWhere(filter domain.SubmissionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.FormType != "" {
		args = append(args, filter.FormType)
		conds = append(conds, fmt.Sprintf("form_type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *submissionRepo) List(ctx context.Context, filter domain.SubmissionFilter) ([]domain.Submission, int, error) {
	where, args := listWhere(filter)

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM submissions"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.List count: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM submissions%s
		ORDER BY COALESCE(client_timestamp, created_at) DESC, id
		LIMIT $%d OFFSET $%d`, submissionColumns, where, len(args)-1, len(args))

	var subs []domain.Submission
	if err := r.db.SelectContext(ctx, &subs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("submissionRepo.List: %w", err)
	}
	return subs, total, nil
}

func (r *submissionRepo) ListAll(ctx context.Context, formType string) ([]domain.Submission, error) {
	var subs []domain.Submission
	err := r.db.SelectContext(ctx, &subs,
		`SELECT `+submissionColumns+` FROM submissions WHERE form_type = $1
		 ORDER BY COALESCE(client_timestamp, created_at) DESC, id`, formType)
	if err != nil {
		return nil, fmt.Errorf("submissionRepo.ListAll: %w", err)
	}
	return subs, nil
}

func (r *submissionRepo) UpdateStatus(ctx context.Context, sub *domain.Submission) error {
	sub.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE submissions SET status = $1, reviewer_comment = $2, reviewed_by = $3, reviewed_at = $4,
		 updated_at = $5 WHERE id = $6 AND form_type = $7`,
		sub.Status, sub.ReviewerComment, sub.ReviewedBy, sub.ReviewedAt, sub.UpdatedAt, sub.ID, sub.FormType)
	if err != nil {
		return fmt.Errorf("submissionRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *submissionRepo) UpdateData(ctx context.Context, sub *domain.Submission) error {
	sub.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE submissions SET data = $1, submitter_email = $2, updated_at = $3
		 WHERE id = $4 AND form_type = $5`,
		sub.Data, sub.SubmitterEmail, sub.UpdatedAt, sub.ID, sub.FormType)
	if err != nil {
		return fmt.Errorf("submissionRepo.UpdateData: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *submissionRepo) Delete(ctx context.Context, formType string, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM submissions WHERE id = $1 AND form_type = $2", id, formType)
	if err != nil {
		return fmt.Errorf("submissionRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClaimUnnotified leases up to limit un-notified rows. Concurrent pollers skip
// rows another transaction holds, and a lease expires after claimLease.
func (r *submissionRepo) ClaimUnnotified(ctx context.Context, limit int) ([]domain.Submission, error) {
	var subs []domain.Submission
	err := r.db.SelectContext(ctx, &subs, `
		UPDATE submissions SET notify_claimed_at = NOW()
		WHERE id IN (
			SELECT id FROM submissions
			WHERE notified_at IS NULL
			  AND (notify_claimed_at IS NULL OR notify_claimed_at < NOW() - make_interval(secs => $2))
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+submissionColumns,
		limit, claimLease.Seconds())
	if err != nil {
		return nil, fmt.Errorf("submissionRepo.ClaimUnnotified: %w", err)
	}
	return subs, nil
}

func (r *submissionRepo) MarkNotified(ctx context.Context, formType string, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE submissions SET notified_at = NOW(), notify_claimed_at = NULL
		 WHERE id = $1 AND form_type = $2`, id, formType)
	if err != nil {
		return fmt.Errorf("submissionRepo.MarkNotified: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
