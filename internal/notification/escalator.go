// Package notification reacts to conversation events with operator notifications.
package notification

import (
	"context"

	"leadconnect_backend/internal/conversations/domain"
	"leadconnect_backend/internal/email"
	"leadconnect_backend/internal/events"
	"leadconnect_backend/platform/config"
	"leadconnect_backend/platform/logger"
)

// Escalator emails the operations inbox when a customer message is urgent.
type Escalator struct {
	sender email.Sender
	to     string
	log    *logger.Logger
}

func NewEscalator(sender email.Sender, to string, log *logger.Logger) *Escalator {
	return &Escalator{sender: sender, to: to, log: log}
}

// NewEscalatorFromConfig returns nil when SMTP escalation is not configured.
func NewEscalatorFromConfig(cfg config.EscalationConfig, log *logger.Logger) *Escalator {
	if !cfg.IsEscalationEnabled() {
		return nil
	}
	sender := email.NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEscalationFrom(),
		"Lead Desk",
	)
	return NewEscalator(sender, cfg.GetEscalationTo(), log)
}

// RegisterHandlers subscribes to reply events on the bus.
func (e *Escalator) RegisterHandlers(bus events.Subscriber) {
	if e == nil {
		return
	}
	bus.Subscribe(events.NameConversationReplied, e)
}

func (e *Escalator) Handle(ctx context.Context, event events.Event) error {
	switch ev := event.(type) {
	case events.ConversationReplied:
		return e.handleConversationReplied(ctx, ev)
	default:
		return nil
	}
}

func (e *Escalator) handleConversationReplied(ctx context.Context, ev events.ConversationReplied) error {
	if ev.Urgency != string(domain.UrgencyUrgent) {
		return nil
	}

	err := e.sender.SendEscalationEmail(ctx, e.to, email.Escalation{
		LeadName:        ev.LeadName,
		LeadPhone:       ev.LeadPhone,
		Brand:           ev.Brand,
		Channel:         domain.Channel(ev.Channel).Label(),
		Phase:           ev.Phase,
		CustomerMessage: ev.UserMessage,
		Reply:           ev.Reply,
	})
	if err != nil {
		e.log.Error("escalation email failed", "leadId", ev.LeadID.String(), "error", err)
		return err
	}
	e.log.Info("conversation escalated", "leadId", ev.LeadID.String(), "brand", ev.Brand)
	return nil
}
