package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihaimyh/checkoutmail/pkg/config"
)

func TestNew_SelectsTransport(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Mail
	}{
		{"sendgrid", config.Mail{Transport: config.TransportSendGrid, SendGridAPIKey: "SG.test"}},
		{"smtp", config.Mail{Transport: config.TransportSMTP, SMTP: config.SMTP{
			Host: "smtp.gmail.com", Port: "587", Username: "u", Password: "p",
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender, err := New(context.Background(), tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.name, sender.Name())
		})
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(context.Background(), config.Mail{Transport: "fax"})
	assert.Error(t, err)

	_, err = New(context.Background(), config.Mail{Transport: config.TransportSendGrid})
	assert.Error(t, err)

	_, err = New(context.Background(), config.Mail{Transport: config.TransportSMTP})
	assert.Error(t, err)
}
