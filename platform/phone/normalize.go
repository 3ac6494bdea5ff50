// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "IN"

// Normalize strips every character that is not an ASCII decimal digit.
// The result is the identity key for a customer across channels, so it is
// purely lexical: "+91 98765 43210" and "919876543210" yield the same key.
// An empty result means the input carried no usable identity.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// NormalizeE164 formats a phone number to E.164 for outbound delivery.
// If parsing fails, it returns the trimmed input.
// Never use it as an identity key; see Normalize.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}

	// Digit-only keys already carry their country code.
	if !strings.HasPrefix(trimmed, "+") && Normalize(trimmed) == trimmed {
		trimmed = "+" + trimmed
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil {
		return strings.TrimSpace(input)
	}

	if !phonenumbers.IsValidNumber(number) {
		return strings.TrimSpace(input)
	}

	return phonenumbers.Format(number, phonenumbers.E164)
}
