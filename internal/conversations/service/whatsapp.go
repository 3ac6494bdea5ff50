package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadconnect_backend/internal/conversations/domain"
	"leadconnect_backend/internal/conversations/generation"
	"leadconnect_backend/internal/whatsapp"
	"leadconnect_backend/platform/apperr"
	"leadconnect_backend/platform/logger"
	"leadconnect_backend/platform/phone"
)

// Fallback texts sent when generation fails, keyed by failure class.
const (
	FallbackAuth        = "Sorry, our assistant is offline right now. A team member will get back to you shortly."
	FallbackRateLimited = "We are receiving a lot of messages right now. Please try again in a minute."
	FallbackUnavailable = "Sorry, something went wrong on our side. Please try again shortly."
)

// ErrPermanent marks failures that must not be retried.
var ErrPermanent = errors.New("permanent failure")

// Handler processes one inbound message.
type Handler interface {
	Handle(ctx context.Context, in Inbound) (Reply, error)
}

// WhatsAppMessage is an accepted inbound WhatsApp text.
type WhatsAppMessage struct {
	MessageID  string    `json:"messageId"`
	Brand      string    `json:"brand"`
	RawPhone   string    `json:"rawPhone"`
	PushName   string    `json:"pushName"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// WhatsAppResponder runs the pipeline for a WhatsApp message and delivers the reply.
type WhatsAppResponder struct {
	pipeline Handler
	sender   whatsapp.Sender
	log      *logger.Logger
}

func NewWhatsAppResponder(pipeline Handler, sender whatsapp.Sender, log *logger.Logger) *WhatsAppResponder {
	return &WhatsAppResponder{pipeline: pipeline, sender: sender, log: log}
}

// Respond returns an error wrapping ErrPermanent when retrying cannot help.
func (r *WhatsAppResponder) Respond(ctx context.Context, m WhatsAppMessage) error {
	var sessionID string
	if normalized := phone.Normalize(m.RawPhone); normalized != "" {
		sessionID = DefaultSessionID(domain.ChannelWhatsApp, m.Brand, normalized)
	}

	reply, err := r.pipeline.Handle(ctx, Inbound{
		Channel:     domain.ChannelWhatsApp,
		Brand:       m.Brand,
		RawPhone:    m.RawPhone,
		DisplayName: m.PushName,
		SessionID:   sessionID,
		Text:        m.Text,
		ReceivedAt:  m.ReceivedAt,
	})
	if err != nil {
		if fallback, ok := FallbackFor(err); ok {
			if sendErr := r.send(ctx, m.RawPhone, fallback); sendErr != nil {
				r.log.Warn("whatsapp fallback not delivered", "error", sendErr)
			}
			return fmt.Errorf("%w: %w", ErrPermanent, err)
		}
		if apperr.Is(err, apperr.KindValidation) {
			return fmt.Errorf("%w: %w", ErrPermanent, err)
		}
		return err
	}

	labels := make([]string, 0, len(reply.Buttons))
	for _, b := range reply.Buttons {
		labels = append(labels, b.Label)
	}
	if err := r.send(ctx, m.RawPhone, whatsapp.FormatReply(reply.Text, labels)); err != nil {
		if errors.Is(err, whatsapp.ErrRejected) {
			return fmt.Errorf("%w: %w", ErrPermanent, err)
		}
		return err
	}
	return nil
}

func (r *WhatsAppResponder) send(ctx context.Context, to, text string) error {
	if r.sender == nil {
		r.log.Warn("whatsapp sender not configured, reply dropped", "phone", to)
		return nil
	}
	return r.sender.SendMessage(ctx, to, text)
}

// FallbackFor picks the customer-facing text for a classified backend failure.
func FallbackFor(err error) (string, bool) {
	switch {
	case errors.Is(err, generation.ErrBackendAuth):
		return FallbackAuth, true
	case errors.Is(err, generation.ErrBackendRateLimited):
		return FallbackRateLimited, true
	case errors.Is(err, generation.ErrBackendUnavailable):
		return FallbackUnavailable, true
	default:
		return "", false
	}
}
