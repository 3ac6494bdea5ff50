// Package domain holds the conversation types shared by synthesis, shaping and storage.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Channel is the touchpoint a message arrived on.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelWeb      Channel = "web"
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c == ChannelWhatsApp || c == ChannelWeb
}

// Label is the display prefix used in merged summaries.
func (c Channel) Label() string {
	switch c {
	case ChannelWhatsApp:
		return "WhatsApp"
	case ChannelWeb:
		return "Web"
	default:
		return string(c)
	}
}

// Role is the sender of a message.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleAssistant Role = "assistant"
)

// Message is one append-only history turn.
type Message struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	SessionID string
	Channel   Channel
	Role      Role
	Content   string
	CreatedAt time.Time
}

// Session is channel-scoped conversation metadata.
type Session struct {
	ID            string
	LeadID        uuid.UUID
	Channel       Channel
	Status        string
	MessageCount  int
	LastMessageAt time.Time
	CreatedAt     time.Time
}

const SessionStatusActive = "active"
