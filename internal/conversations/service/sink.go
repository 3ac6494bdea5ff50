package service

import (
	"context"
	"strings"
	"time"

	"leadconnect_backend/internal/conversations/domain"
	"leadconnect_backend/internal/conversations/repository"
	leadrepo "leadconnect_backend/internal/leads/repository"
	"leadconnect_backend/platform/apperr"

	"github.com/google/uuid"
)

// StoreInput is one finished exchange.
type StoreInput struct {
	Context      domain.Context
	UserMessage  string
	ReceivedAt   time.Time
	Response     domain.ShapedResponse
	OutputTokens int
	ElapsedMs    int64
}

// Sink persists an exchange and touches the lead's last-contact time.
type Sink struct {
	exchanges repository.ExchangeWriter
	leads     leadrepo.LeadWriter
	now       func() time.Time
}

func NewSink(exchanges repository.ExchangeWriter, leads leadrepo.LeadWriter) *Sink {
	return &Sink{exchanges: exchanges, leads: leads, now: time.Now}
}

func (s *Sink) Store(ctx context.Context, in StoreInput) error {
	const op = "conversations.Sink.Store"

	c := in.Context
	received := in.ReceivedAt.UTC()
	if received.IsZero() {
		received = s.now().UTC()
	}
	replied := s.now().UTC()
	if !replied.After(received) {
		replied = received.Add(time.Millisecond)
	}

	sessionID := c.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID(c.Channel, c.Brand, c.NormalizedPhone)
	}

	err := s.exchanges.StoreExchange(ctx, repository.Exchange{
		LeadID:    c.LeadID,
		SessionID: sessionID,
		Channel:   c.Channel,
		At:        replied,
		Customer: domain.Message{
			ID: uuid.New(), LeadID: c.LeadID, SessionID: sessionID, Channel: c.Channel,
			Role: domain.RoleCustomer, Content: in.UserMessage, CreatedAt: received,
		},
		Assistant: domain.Message{
			ID: uuid.New(), LeadID: c.LeadID, SessionID: sessionID, Channel: c.Channel,
			Role: domain.RoleAssistant, Content: in.Response.Text, CreatedAt: replied,
		},
		Log: repository.LogEntry{
			ID:           uuid.New(),
			UserMessage:  in.UserMessage,
			Reply:        in.Response.Text,
			Buttons:      in.Response.Labels(),
			Urgency:      in.Response.Urgency,
			NextAction:   in.Response.NextAction,
			Phase:        c.Phase,
			OutputTokens: in.OutputTokens,
			ElapsedMs:    in.ElapsedMs,
			CreatedAt:    replied,
		},
	})
	if err != nil {
		return apperr.StoreFailure(op, err)
	}

	if _, err := s.leads.TouchLastInteraction(ctx, c.LeadID, string(c.Channel), replied); err != nil {
		return apperr.StoreFailure(op, err)
	}
	return nil
}

// DefaultSessionID is the session key used when the channel supplies none.
// It carries the brand because one phone is a separate lead per brand.
func DefaultSessionID(channel domain.Channel, brand, normalizedPhone string) string {
	return string(channel) + ":" + strings.TrimSpace(brand) + ":" + normalizedPhone
}
