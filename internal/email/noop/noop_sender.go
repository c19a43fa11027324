package noop

import (
	"context"

	"go.uber.org/zap"

	"formdesk/internal/domain"
	"formdesk/internal/email"
	"formdesk/internal/port"
)

type noopSender struct {
	frontendURL string
	logger      *zap.Logger
}

// NewNoopSender creates an EmailSender that only logs what it would have sent.
func NewNoopSender(frontendURL string, logger *zap.Logger) port.EmailSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &noopSender{frontendURL: frontendURL, logger: logger.Named("email.noop")}
}

func (s *noopSender) SendSubmissionNotice(_ context.Context, to []string, sub *domain.Submission) error {
	msg := email.SubmissionNotice(s.frontendURL, sub)
	s.logger.Info("submission notice",
		zap.Strings("to", to),
		zap.String("subject", msg.Subject),
		zap.String("review_url", email.ReviewURL(s.frontendURL, sub)),
	)
	return nil
}

func (s *noopSender) SendStatusUpdate(_ context.Context, toEmail string, sub *domain.Submission, comment string) error {
	msg := email.StatusUpdate(sub, comment)
	s.logger.Info("status update",
		zap.String("to", toEmail),
		zap.String("subject", msg.Subject),
		zap.String("submission_id", sub.ID.String()),
	)
	return nil
}
