// Package sendgrid delivers notification emails through the SendGrid v3 API.
package sendgrid

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	sg "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/mihaimyh/checkoutmail/pkg/notifier"
)

const transportName = "sendgrid"

// ErrAPIKeyMissing is returned by New when no API key is configured
var ErrAPIKeyMissing = errors.New("sendgrid api key not configured")

// Client is the subset of the SendGrid client used by Sender.
type Client interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Sender implements notifier.Sender on SendGrid.
type Sender struct {
	client Client
}

// New creates a Sender authenticated with apiKey.
func New(apiKey string) (*Sender, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrAPIKeyMissing
	}
	return NewWithClient(sg.NewSendClient(apiKey)), nil
}

// NewWithClient creates a Sender on top of an existing client.
func NewWithClient(client Client) *Sender {
	return &Sender{client: client}
}

// Name returns the transport name
func (s *Sender) Name() string {
	return transportName
}

// Send delivers email as a single message addressed to every recipient.
func (s *Sender) Send(ctx context.Context, email *notifier.Email) error {
	resp, err := s.client.SendWithContext(ctx, buildMessage(email))
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp == nil {
		return errors.New("sendgrid: empty response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body))
	}
	return nil
}

func buildMessage(email *notifier.Email) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail("", email.From))
	m.Subject = email.Subject

	p := mail.NewPersonalization()
	for _, to := range email.To {
		p.AddTos(mail.NewEmail("", to))
	}
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/plain", email.Body))

	return m
}
