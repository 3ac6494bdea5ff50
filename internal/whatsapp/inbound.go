package whatsapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrIgnored = errors.New("whatsapp webhook event ignored")

// InboundMessage is a customer text message received from the gateway.
type InboundMessage struct {
	MessageID  string
	RawPhone   string
	PushName   string
	Text       string
	ReceivedAt time.Time
}

type gowaWebhook struct {
	From      string `json:"from"`
	PushName  string `json:"pushname"`
	FromMe    bool   `json:"is_from_me"`
	Timestamp string `json:"timestamp"`
	Message   struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"message"`
}

// ParseInbound decodes a GOWA webhook body. Group chats, our own messages and
// non-text events return ErrIgnored.
func ParseInbound(body []byte) (InboundMessage, error) {
	var hook gowaWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return InboundMessage{}, fmt.Errorf("decode whatsapp webhook: %w", err)
	}

	if hook.FromMe || strings.HasSuffix(hook.From, "@g.us") {
		return InboundMessage{}, ErrIgnored
	}
	text := strings.TrimSpace(hook.Message.Text)
	if text == "" {
		return InboundMessage{}, ErrIgnored
	}
	user := JIDUser(hook.From)
	if user == "" {
		return InboundMessage{}, fmt.Errorf("whatsapp webhook without sender")
	}

	received := time.Now().UTC()
	if ts, err := time.Parse(time.RFC3339, hook.Timestamp); err == nil {
		received = ts.UTC()
	}

	return InboundMessage{
		MessageID:  hook.Message.ID,
		RawPhone:   user,
		PushName:   strings.TrimSpace(hook.PushName),
		Text:       text,
		ReceivedAt: received,
	}, nil
}

// JIDUser returns the user part of a WhatsApp JID: "919876543210:12@s.whatsapp.net" → "919876543210".
func JIDUser(jid string) string {
	if i := strings.IndexAny(jid, ":@"); i >= 0 {
		jid = jid[:i]
	}
	return strings.TrimSpace(jid)
}
