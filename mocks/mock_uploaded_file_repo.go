package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"formdesk/internal/domain"
)

// MockUploadedFileRepo is a mock implementation of port.UploadedFileRepository.
type MockUploadedFileRepo struct {
	mock.Mock
}

func (m *MockUploadedFileRepo) Create(ctx context.Context, file *domain.UploadedFile) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockUploadedFileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.UploadedFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UploadedFile), args.Error(1)
}

func (m *MockUploadedFileRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus, url string) error {
	args := m.Called(ctx, id, status, url)
	return args.Error(0)
}
