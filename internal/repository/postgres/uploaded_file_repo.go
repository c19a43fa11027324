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

type uploadedFileRepo struct {
	db *sqlx.DB
}

// NewUploadedFileRepo creates a new PostgreSQL-backed UploadedFileRepository.
func NewUploadedFileRepo(db *sqlx.DB) port.UploadedFileRepository {
	return &uploadedFileRepo{db: db}
}

func (r *uploadedFileRepo) Create(ctx context.Context, file *domain.UploadedFile) error {
	now := time.Now().UTC()
	file.CreatedAt = now
	file.UpdatedAt = now

	query := `INSERT INTO uploaded_files
		(id, form_type, field_key, original_name, file_type, file_size,
		 bucket, storage_key, url, content_type, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		file.ID, file.FormType, file.FieldKey, file.OriginalName, file.FileType, file.FileSize,
		file.Bucket, file.StorageKey, file.URL, file.ContentType, file.Status,
		file.CreatedAt, file.UpdatedAt)
	if err != nil {
		return fmt.Errorf("uploadedFileRepo.Create: %w", err)
	}
	return nil
}

func (r *uploadedFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadedFile, error) {
	var file domain.UploadedFile
	err := r.db.GetContext(ctx, &file, "SELECT * FROM uploaded_files WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("uploadedFileRepo.GetByID: %w", err)
	}
	return &file, nil
}

func (r *uploadedFileRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus, url string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE uploaded_files SET status = $1, url = $2, updated_at = $3 WHERE id = $4",
		status, url, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("uploadedFileRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
