package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"formdesk/internal/domain"
	"formdesk/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

const statusCountsQuery = `SELECT form_type, status, COUNT(*) AS count
FROM submissions
GROUP BY form_type, status
ORDER BY form_type, status`

func (r *statsRepo) CountByFormTypeAndStatus(ctx context.Context) ([]domain.StatusCount, error) {
	var counts []domain.StatusCount
	if err := r.db.SelectContext(ctx, &counts, statusCountsQuery); err != nil {
		return nil, fmt.Errorf("statsRepo.CountByFormTypeAndStatus: %w", err)
	}
	return counts, nil
}
