package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"formdesk/internal/config"
	"formdesk/internal/domain"
	"formdesk/internal/email"
	"formdesk/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("ses: from address: %w", config.ErrMissing)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesSender{
		client:      sesv2.NewFromConfig(awsCfg),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		frontendURL: cfg.FrontendURL,
	}, nil
}

func (s *sesSender) SendSubmissionNotice(ctx context.Context, to []string, sub *domain.Submission) error {
	if len(to) == 0 {
		return nil
	}
	return s.send(ctx, to, email.SubmissionNotice(s.frontendURL, sub))
}

func (s *sesSender) SendStatusUpdate(ctx context.Context, toEmail string, sub *domain.Submission, comment string) error {
	return s.send(ctx, []string{toEmail}, email.StatusUpdate(sub, comment))
}

func (s *sesSender) send(ctx context.Context, to []string, msg email.Message) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: to,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &msg.Subject},
				Body: &types.Body{
					Html: &types.Content{Data: &msg.HTML},
					Text: &types.Content{Data: &msg.Text},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}
