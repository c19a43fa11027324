package port

import (
	"context"

	"formdesk/internal/domain"
)

// StatsRepository provides aggregate statistics queries.
type StatsRepository interface {
	CountByFormTypeAndStatus(ctx context.Context) ([]domain.StatusCount, error)
}
