package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/printdesk/pd-backend/internal/config"
)

// SESService sends transactional mail. Bodies are HTML since every
// template under templates/email renders markup.
type SESService struct {
	client    *ses.Client
	fromEmail string
}

func NewSESService(ctx context.Context, cfg config.AWSConfig) (*SESService, error) {
	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &SESService{
		client:    ses.NewFromConfig(awsCfg),
		fromEmail: cfg.FromEmail,
	}, nil
}

func (s *SESService) SendEmail(ctx context.Context, to, subject, body string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(body)},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}
