// Package smtp delivers notification emails through an SMTP relay such as Gmail.
package smtp

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/mihaimyh/checkoutmail/pkg/notifier"
)

const transportName = "smtp"

// ErrNotConfigured is returned by New when host or credentials are missing
var ErrNotConfigured = errors.New("smtp sender not configured")

// SendFunc matches net/smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Config holds relay settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string

	// SendMail is optional. If nil, net/smtp.SendMail is used.
	SendMail SendFunc

	// Now is optional and stamps the Date header.
	Now func() time.Time
}

// Sender implements notifier.Sender on SMTP with PLAIN auth.
type Sender struct {
	addr     string
	host     string
	auth     smtp.Auth
	sendMail SendFunc
	now      func() time.Time
}

// New creates a Sender from config.
func New(config Config) (*Sender, error) {
	if config.Host == "" || config.Port == "" {
		return nil, fmt.Errorf("%w: host and port are required", ErrNotConfigured)
	}
	if config.Username == "" || config.Password == "" {
		return nil, fmt.Errorf("%w: credentials are required", ErrNotConfigured)
	}

	sendMail := config.SendMail
	if sendMail == nil {
		sendMail = smtp.SendMail
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &Sender{
		addr:     net.JoinHostPort(config.Host, config.Port),
		host:     config.Host,
		auth:     smtp.PlainAuth("", config.Username, config.Password, config.Host),
		sendMail: sendMail,
		now:      now,
	}, nil
}

// Name returns the transport name
func (s *Sender) Name() string {
	return transportName
}

// Send delivers email. net/smtp has no context support, so ctx is only
// checked before dialing.
func (s *Sender) Send(ctx context.Context, email *notifier.Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.sendMail(s.addr, s.auth, email.From, email.To, s.buildMessage(email)); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func (s *Sender) buildMessage(email *notifier.Email) []byte {
	var b strings.Builder
	b.WriteString("From: " + email.From + "\r\n")
	b.WriteString("To: " + strings.Join(email.To, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", email.Subject) + "\r\n")
	b.WriteString("Date: " + s.now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(email.Body, "\n", "\r\n"))
	return []byte(b.String())
}
