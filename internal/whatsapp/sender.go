// Package whatsapp delivers replies to WhatsApp and parses inbound gateway webhooks.
package whatsapp

import (
	"context"
	"fmt"
	"strings"

	"leadconnect_backend/platform/config"
	"leadconnect_backend/platform/logger"
)

const (
	ProviderGOWA   = "gowa"
	ProviderTwilio = "twilio"
)

// Sender delivers one text message to a phone number.
type Sender interface {
	Name() string
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

// NewSender returns the configured sender, or nil when WhatsApp delivery is disabled.
func NewSender(cfg config.WhatsAppConfig, log *logger.Logger) (Sender, error) {
	switch strings.ToLower(cfg.GetWhatsAppProvider()) {
	case "", ProviderGOWA:
		if cfg.GetWhatsAppURL() == "" {
			return nil, nil
		}
		return NewGOWAClient(cfg.GetWhatsAppURL(), cfg.GetWhatsAppKey(), cfg.GetWhatsAppDeviceID(), log), nil
	case ProviderTwilio:
		client, err := NewTwilioClient(cfg.GetTwilioAccountSID(), cfg.GetTwilioAuthToken(), cfg.GetTwilioFromNumber(), log)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown whatsapp provider %q", cfg.GetWhatsAppProvider())
	}
}

// FormatReply renders button labels as numbered option lines under the reply.
func FormatReply(text string, labels []string) string {
	if len(labels) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\n")
	for i, label := range labels {
		fmt.Fprintf(&b, "\n%d. %s", i+1, label)
	}
	return b.String()
}
