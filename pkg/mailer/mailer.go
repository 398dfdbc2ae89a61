// Package mailer selects the email transport configured for the process.
package mailer

import (
	"context"
	"fmt"

	"github.com/mihaimyh/checkoutmail/pkg/config"
	"github.com/mihaimyh/checkoutmail/pkg/mailer/sendgrid"
	"github.com/mihaimyh/checkoutmail/pkg/mailer/ses"
	"github.com/mihaimyh/checkoutmail/pkg/mailer/smtp"
	"github.com/mihaimyh/checkoutmail/pkg/notifier"
)

// New returns the Sender for cfg.Transport. Clients are built once and reused
// across deliveries.
func New(ctx context.Context, cfg config.Mail) (notifier.Sender, error) {
	var (
		sender notifier.Sender
		err    error
	)

	switch cfg.Transport {
	case config.TransportSendGrid:
		sender, err = wrap(sendgrid.New(cfg.SendGridAPIKey))
	case config.TransportSMTP:
		sender, err = wrap(smtp.New(smtp.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		}))
	case config.TransportSES:
		sender, err = wrap(ses.New(ctx, cfg.SESRegion))
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
	if err != nil {
		return nil, fmt.Errorf("%s transport: %w", cfg.Transport, err)
	}
	return sender, nil
}

// wrap keeps a typed nil pointer from becoming a non-nil interface.
func wrap[S notifier.Sender](s S, err error) (notifier.Sender, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}
