package service

import (
	"context"
	"fmt"

	"formdesk/internal/domain"
	"formdesk/internal/port"
)

// StatsService provides aggregate statistics.
type StatsService interface {
	GetStats(ctx context.Context) (*domain.Stats, error)
}

type statsService struct {
	statsRepo port.StatsRepository
}

// NewStatsService creates a new StatsService implementation.
func NewStatsService(statsRepo port.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) GetStats(ctx context.Context) (*domain.Stats, error) {
	counts, err := s.statsRepo.CountByFormTypeAndStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("statsService.GetStats: %w", err)
	}
	return domain.NewStats(counts), nil
}
