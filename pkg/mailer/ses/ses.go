// Package ses delivers notification emails through Amazon SES (API v2).
package ses

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/mihaimyh/checkoutmail/pkg/notifier"
)

const (
	transportName = "ses"
	charset       = "UTF-8"
)

// API is the subset of the SES v2 client used by Sender.
type API interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Sender implements notifier.Sender on SES.
type Sender struct {
	api API
}

// New loads the default AWS configuration (env, shared config, instance role)
// and creates a Sender. An empty region keeps the region of the default chain.
func New(ctx context.Context, region string) (*Sender, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewWithAPI(sesv2.NewFromConfig(cfg)), nil
}

// NewWithAPI creates a Sender on top of an existing client.
func NewWithAPI(api API) *Sender {
	return &Sender{api: api}
}

// Name returns the transport name
func (s *Sender) Name() string {
	return transportName
}

// Send delivers email as a simple text message.
func (s *Sender) Send(ctx context.Context, email *notifier.Email) error {
	_, err := s.api.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(email.From),
		Destination: &types.Destination{
			ToAddresses: email.To,
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(email.Subject), Charset: aws.String(charset)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(email.Body), Charset: aws.String(charset)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}
	return nil
}
