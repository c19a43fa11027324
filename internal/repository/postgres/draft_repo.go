package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"formdesk/internal/domain"
	"formdesk/internal/port"
)

type draftRepo struct {
	db *sqlx.DB
}

// NewDraftRepo creates a new PostgreSQL-backed DraftRepository.
func NewDraftRepo(db *sqlx.DB) port.DraftRepository {
	return &draftRepo{db: db}
}

// Save upserts the draft; the latest write wins.
func (r *draftRepo) Save(ctx context.Context, draft *domain.Draft) error {
	draft.UpdatedAt = time.Now().UTC()
	if len(draft.Values) == 0 {
		draft.Values = []byte("{}")
	}
	if len(draft.Uploads) == 0 {
		draft.Uploads = []byte("{}")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO drafts (key, form_type, client_id, step, form_values, uploads, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (key) DO UPDATE SET
			step = EXCLUDED.step,
			form_values = EXCLUDED.form_values,
			uploads = EXCLUDED.uploads,
			updated_at = EXCLUDED.updated_at`,
		draft.Key, draft.FormType, draft.ClientID, draft.Step, draft.Values, draft.Uploads, draft.UpdatedAt)
	if err != nil {
		return fmt.Errorf("draftRepo.Save: %w", err)
	}
	return nil
}

func (r *draftRepo) Get(ctx context.Context, key string) (*domain.Draft, error) {
	var draft domain.Draft
	err := r.db.GetContext(ctx, &draft, "SELECT * FROM drafts WHERE key = $1", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("draftRepo.Get: %w", err)
	}
	return &draft, nil
}

func (r *draftRepo) Delete(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM drafts WHERE key = $1", key)
	if err != nil {
		return fmt.Errorf("draftRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
