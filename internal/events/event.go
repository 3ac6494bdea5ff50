// Package events holds the payloads published between the leads and
// conversations modules, plus aliases for the platform bus.
package events

import (
	"leadconnect_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Publisher   = events.Publisher
	Subscriber  = events.Subscriber
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

const (
	NameLeadFirstContact    = "leads.lead.first_contact"
	NameConversationReplied = "conversations.reply.stored"
)

// LeadFirstContact fires once per lead, when InsertIfAbsent actually created it.
type LeadFirstContact struct {
	BaseEvent
	LeadID          uuid.UUID `json:"leadId"`
	Brand           string    `json:"brand"`
	Channel         string    `json:"channel"`
	NormalizedPhone string    `json:"normalizedPhone"`
}

func (LeadFirstContact) EventName() string { return NameLeadFirstContact }

// ConversationReplied fires after the exchange has been committed.
type ConversationReplied struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	Brand       string    `json:"brand"`
	Channel     string    `json:"channel"`
	LeadName    string    `json:"leadName"`
	LeadPhone   string    `json:"leadPhone"`
	UserMessage string    `json:"userMessage"`
	Reply       string    `json:"reply"`
	Button      string    `json:"button"`
	Urgency     string    `json:"urgency"`
	Phase       string    `json:"phase"`
}

func (ConversationReplied) EventName() string { return NameConversationReplied }
