package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"formdesk/internal/domain"
	"formdesk/internal/port"
)

type reviewerRepo struct {
	db *sqlx.DB
}

// NewReviewerRepo creates a new PostgreSQL-backed ReviewerRepository.
func NewReviewerRepo(db *sqlx.DB) port.ReviewerRepository {
	return &reviewerRepo{db: db}
}

func (r *reviewerRepo) Create(ctx context.Context, reviewer *domain.Reviewer) error {
	reviewer.ID = uuid.New()
	now := time.Now().UTC()
	reviewer.CreatedAt = now
	reviewer.UpdatedAt = now

	query := `INSERT INTO reviewers (id, email, password_hash, full_name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		reviewer.ID, reviewer.Email, reviewer.PasswordHash, reviewer.FullName,
		reviewer.Role, reviewer.IsActive, reviewer.CreatedAt, reviewer.UpdatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("reviewerRepo.Create: %w", err)
	}
	return nil
}

func (r *reviewerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reviewer, error) {
	var reviewer domain.Reviewer
	err := r.db.GetContext(ctx, &reviewer, "SELECT * FROM reviewers WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reviewerRepo.GetByID: %w", err)
	}
	return &reviewer, nil
}

func (r *reviewerRepo) GetByEmail(ctx context.Context, email string) (*domain.Reviewer, error) {
	var reviewer domain.Reviewer
	err := r.db.GetContext(ctx, &reviewer, "SELECT * FROM reviewers WHERE LOWER(email) = LOWER($1)", email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reviewerRepo.GetByEmail: %w", err)
	}
	return &reviewer, nil
}

func (r *reviewerRepo) List(ctx context.Context, offset, limit int) ([]domain.Reviewer, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reviewers"); err != nil {
		return nil, 0, fmt.Errorf("reviewerRepo.List count: %w", err)
	}

	var reviewers []domain.Reviewer
	err := r.db.SelectContext(ctx, &reviewers,
		"SELECT * FROM reviewers ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("reviewerRepo.List: %w", err)
	}
	return reviewers, total, nil
}

func (r *reviewerRepo) ListActiveEmails(ctx context.Context) ([]string, error) {
	var emails []string
	err := r.db.SelectContext(ctx, &emails,
		"SELECT email FROM reviewers WHERE is_active = TRUE ORDER BY email")
	if err != nil {
		return nil, fmt.Errorf("reviewerRepo.ListActiveEmails: %w", err)
	}
	return emails, nil
}

func (r *reviewerRepo) Update(ctx context.Context, reviewer *domain.Reviewer) error {
	reviewer.UpdatedAt = time.Now().UTC()
	query := `UPDATE reviewers SET email = $1, full_name = $2, role = $3, is_active = $4,
		password_hash = $5, updated_at = $6 WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		reviewer.Email, reviewer.FullName, reviewer.Role, reviewer.IsActive,
		reviewer.PasswordHash, reviewer.UpdatedAt, reviewer.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("reviewerRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *reviewerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM reviewers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("reviewerRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
