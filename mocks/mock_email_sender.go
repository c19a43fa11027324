package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"formdesk/internal/domain"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendSubmissionNotice(ctx context.Context, to []string, sub *domain.Submission) error {
	args := m.Called(ctx, to, sub)
	return args.Error(0)
}

func (m *MockEmailSender) SendStatusUpdate(ctx context.Context, toEmail string, sub *domain.Submission, comment string) error {
	args := m.Called(ctx, toEmail, sub, comment)
	return args.Error(0)
}
