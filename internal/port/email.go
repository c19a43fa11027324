package port

import (
	"context"

	"formdesk/internal/domain"
)

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendSubmissionNotice(ctx context.Context, to []string, sub *domain.Submission) error
	SendStatusUpdate(ctx context.Context, toEmail string, sub *domain.Submission, comment string) error
}
