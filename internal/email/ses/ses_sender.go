package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/google/uuid"

	"expenso/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed ReviewNotifier.
func NewSESSender(region, fromAddress, fromName, frontendURL string) (port.ReviewNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesSender) SendReviewRequired(ctx context.Context, toEmail, toName string, batchID uuid.UUID) error {
	reviewURL := fmt.Sprintf("%s/batches/%s/review", s.frontendURL, batchID)

	subject := "An expense batch needs your review"
	htmlBody := buildReviewHTML(toName, reviewURL)
	textBody := fmt.Sprintf(
		"Hi %s,\n\nOne of your expense batches matched more than one previous submission and needs a decision before processing can continue:\n%s\n\nExpenso Team",
		toName, reviewURL)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildReviewHTML(toName, reviewURL string) string {
	return fmt.Sprintf(`<html><body style="font-family: sans-serif; color: #222;">
<p>Hi %s,</p>
<p>One of your expense batches matched more than one previous submission and needs a decision before processing can continue.</p>
<p><a href="%s" style="display:inline-block;padding:10px 18px;background:#2563eb;color:#fff;border-radius:6px;text-decoration:none;">Review batch</a></p>
<p>Expenso Team</p>
</body></html>`, toName, reviewURL)
}
