package domain

import (
	"time"

	leaddomain "leadconnect_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Context is the synthesized per-request view handed to generation and shaping.
// It is rebuilt on every request and never persisted.
type Context struct {
	LeadID          uuid.UUID `json:"leadId"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	NormalizedPhone string    `json:"normalizedPhone"`
	Brand           string    `json:"brand"`
	Channel         Channel   `json:"channel"`
	SessionID       string    `json:"sessionId,omitempty"`
	FirstTouchpoint string    `json:"firstTouchpoint"`
	LastTouchpoint  string    `json:"lastTouchpoint"`
	FirstContactAt  time.Time `json:"firstContactAt"`
	LastContactAt   time.Time `json:"lastContactAt"`

	HasSession       bool  `json:"hasSession"`
	MessageCount     int   `json:"messageCount"`
	HistoryTurnCount int   `json:"historyTurnCount"`
	IsNewUser        bool  `json:"isNewUser"`
	Phase            Phase `json:"phase"`

	Summary   string   `json:"summary"`
	Interests []string `json:"interests"`
	Tags      []string `json:"tags,omitempty"`
	Budget    string   `json:"budget,omitempty"`

	Booking         *leaddomain.Booking `json:"booking"`
	RecentMessages  []Message           `json:"recentMessages"`
	WebConversation []leaddomain.Turn   `json:"webConversation,omitempty"`
}

// HasBooking reports whether an existing booking is attached.
func (c Context) HasBooking() bool {
	return c.Booking != nil && c.Booking.Exists()
}
