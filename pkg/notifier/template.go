package notifier

import (
	"fmt"
	"strings"
)

const notAvailable = "N/A"

// FormatAmount renders an amount in minor currency units with two fixed decimals.
// 4999 becomes "49.99". Integer arithmetic only.
func FormatAmount(minor int64) string {
	sign, magnitude := "", uint64(minor)
	if minor < 0 {
		// unsigned negation also covers math.MinInt64
		sign, magnitude = "-", -magnitude
	}
	return fmt.Sprintf("%s%d.%02d", sign, magnitude/100, magnitude%100)
}

// ParseRecipients splits a comma separated address list, trimming whitespace
// and dropping empty entries.
func ParseRecipients(raw string) []string {
	parts := strings.Split(raw, ",")
	recipients := make([]string, 0, len(parts))
	for _, p := range parts {
		if addr := strings.TrimSpace(p); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	return recipients
}

// ComposeEmail builds the notification for a completed checkout.
// The output depends only on its arguments.
func ComposeEmail(session *CheckoutSession, from string, to []string) *Email {
	amount := FormatAmount(session.AmountTotal)

	var b strings.Builder
	b.WriteString("A payment was received.\n\n")
	fmt.Fprintf(&b, "Amount: $%s %s\n", amount, orNA(strings.ToUpper(session.Currency)))
	fmt.Fprintf(&b, "Customer Name: %s\n", orNA(session.CustomerName))
	fmt.Fprintf(&b, "Customer Email: %s\n", orNA(session.CustomerEmail))
	fmt.Fprintf(&b, "Custom Field: %s\n", orNA(session.CustomField))
	fmt.Fprintf(&b, "Payment Intent: %s\n", orNA(session.PaymentIntentID))
	fmt.Fprintf(&b, "Checkout Session: %s\n", orNA(session.ID))

	recipients := make([]string, len(to))
	copy(recipients, to)

	return &Email{
		To:      recipients,
		From:    from,
		Subject: fmt.Sprintf("New Payment: $%s", amount),
		Body:    b.String(),
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}
