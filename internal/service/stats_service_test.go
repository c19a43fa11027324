package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"formdesk/internal/domain"
	"formdesk/internal/service"
	"formdesk/mocks"
)

func TestStatsService_GetStats(t *testing.T) {
	repo := new(mocks.MockStatsRepo)
	svc := service.NewStatsService(repo)

	repo.On("CountByFormTypeAndStatus", mock.Anything).Return([]domain.StatusCount{
		{FormType: "motor-claim", Status: domain.StatusProcessing, Count: 3},
		{FormType: "motor-claim", Status: domain.StatusApproved, Count: 1},
		{FormType: "individual-kyc", Status: domain.StatusProcessing, Count: 2},
	}, nil)

	stats, err := svc.GetStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 5, stats.ByStatus[domain.StatusProcessing])
	assert.Equal(t, 1, stats.ByFormType["motor-claim"]["approved"])
}

func TestStatsService_GetStats_Error(t *testing.T) {
	repo := new(mocks.MockStatsRepo)
	svc := service.NewStatsService(repo)

	repo.On("CountByFormTypeAndStatus", mock.Anything).Return(nil, errors.New("boom"))

	stats, err := svc.GetStats(context.Background())
	assert.Nil(t, stats)
	assert.Error(t, err)
}
