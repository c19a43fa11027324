package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"formdesk/internal/domain"
	"formdesk/internal/service"
)

// MockSubmissionService is a mock implementation of service.SubmissionService.
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Create(ctx context.Context, formType string, payload map[string]any) (*domain.Submission, error) {
	args := m.Called(ctx, formType, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionService) GetByID(ctx context.Context, formType string, id uuid.UUID) (*domain.Submission, error) {
	args := m.Called(ctx, formType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionService) List(ctx context.Context, filter domain.SubmissionFilter) ([]domain.Submission, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Submission), args.Int(1), args.Error(2)
}

func (m *MockSubmissionService) UpdateStatus(ctx context.Context, input service.UpdateStatusInput) (*domain.Submission, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionService) UpdateData(ctx context.Context, input service.UpdateDataInput) (*domain.Submission, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Submission), args.Error(1)
}

func (m *MockSubmissionService) Delete(ctx context.Context, formType string, id uuid.UUID, reviewerID *uuid.UUID) error {
	args := m.Called(ctx, formType, id, reviewerID)
	return args.Error(0)
}

func (m *MockSubmissionService) ListAudit(ctx context.Context, formType string, id uuid.UUID, offset, limit int) ([]domain.SubmissionAuditEntry, int, error) {
	args := m.Called(ctx, formType, id, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.SubmissionAuditEntry), args.Int(1), args.Error(2)
}

func (m *MockSubmissionService) ExportCSV(ctx context.Context, formType string, w io.Writer) error {
	args := m.Called(ctx, formType, w)
	return args.Error(0)
}

func (m *MockSubmissionService) ExportXLSX(ctx context.Context, formTypes []string, w io.Writer) error {
	args := m.Called(ctx, formTypes, w)
	return args.Error(0)
}
