package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"formdesk/internal/domain"
	"formdesk/internal/service"
)

// MockReviewerService is a mock implementation of service.ReviewerService.
type MockReviewerService struct {
	mock.Mock
}

func (m *MockReviewerService) Create(ctx context.Context, input service.CreateReviewerInput) (*domain.Reviewer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reviewer), args.Error(1)
}

func (m *MockReviewerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reviewer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reviewer), args.Error(1)
}

func (m *MockReviewerService) List(ctx context.Context, offset, limit int) ([]domain.Reviewer, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Reviewer), args.Int(1), args.Error(2)
}

func (m *MockReviewerService) Update(ctx context.Context, id uuid.UUID, input service.UpdateReviewerInput) (*domain.Reviewer, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reviewer), args.Error(1)
}

func (m *MockReviewerService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
