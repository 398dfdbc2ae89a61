package stripe

import (
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v83"
)

// FieldSourceKind selects where the custom value of a checkout session is read from.
type FieldSourceKind string

const (
	// FieldSourceCustomField reads a Checkout custom field (text, dropdown or numeric).
	FieldSourceCustomField FieldSourceKind = "custom_field"
	// FieldSourceMetadata reads a session metadata entry.
	FieldSourceMetadata FieldSourceKind = "metadata"
	// FieldSourceNone never extracts a custom value.
	FieldSourceNone FieldSourceKind = "none"
)

// DefaultFieldSource reads the first Checkout custom field.
var DefaultFieldSource = FieldSource{Kind: FieldSourceCustomField}

// FieldSource names the custom value reported in the notification.
// An empty Key with FieldSourceCustomField selects the first custom field.
type FieldSource struct {
	Kind FieldSourceKind
	Key  string
}

// ParseFieldSource parses "custom_field", "custom_field:<key>", "metadata:<key>" or "none".
func ParseFieldSource(s string) (FieldSource, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultFieldSource, nil
	}

	kind, key, _ := strings.Cut(s, ":")
	fs := FieldSource{
		Kind: FieldSourceKind(strings.ToLower(strings.TrimSpace(kind))),
		Key:  strings.TrimSpace(key),
	}

	switch fs.Kind {
	case FieldSourceCustomField:
		return fs, nil
	case FieldSourceMetadata:
		if fs.Key == "" {
			return FieldSource{}, fmt.Errorf("%w: metadata source needs a key (metadata:<key>)", ErrInvalidFieldSource)
		}
		return fs, nil
	case FieldSourceNone:
		return FieldSource{Kind: FieldSourceNone}, nil
	default:
		return FieldSource{}, fmt.Errorf("%w: %q", ErrInvalidFieldSource, s)
	}
}

func (fs FieldSource) String() string {
	if fs.Key == "" {
		return string(fs.Kind)
	}
	return string(fs.Kind) + ":" + fs.Key
}

// Extract returns the configured value from session, or "" when absent.
func (fs FieldSource) Extract(session *stripe.CheckoutSession) string {
	switch fs.Kind {
	case FieldSourceMetadata:
		if session.Metadata == nil {
			return ""
		}
		return strings.TrimSpace(session.Metadata[fs.Key])
	case FieldSourceCustomField:
		for _, field := range session.CustomFields {
			if field == nil {
				continue
			}
			if fs.Key != "" && !strings.EqualFold(field.Key, fs.Key) {
				continue
			}
			// only the first matching field is considered
			return customFieldValue(field)
		}
	}
	return ""
}

func customFieldValue(field *stripe.CheckoutSessionCustomField) string {
	switch {
	case field.Text != nil && field.Text.Value != "":
		return field.Text.Value
	case field.Dropdown != nil && field.Dropdown.Value != "":
		return field.Dropdown.Value
	case field.Numeric != nil && field.Numeric.Value != "":
		return field.Numeric.Value
	default:
		return ""
	}
}
