package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"leadconnect_backend/internal/conversations/dedup"
	"leadconnect_backend/internal/conversations/domain"
	"leadconnect_backend/internal/conversations/service"
	"leadconnect_backend/internal/conversations/transport"
	"leadconnect_backend/internal/whatsapp"
	"leadconnect_backend/platform/httpkit"
	"leadconnect_backend/platform/logger"
	"leadconnect_backend/platform/sanitize"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 1 << 20

// Enqueuer hands accepted messages to the background worker.
type Enqueuer interface {
	EnqueueWhatsAppInbound(ctx context.Context, m service.WhatsAppMessage) error
}

// Responder answers a message in-process.
type Responder interface {
	Respond(ctx context.Context, m service.WhatsAppMessage) error
}

// WebhookHandler accepts inbound WhatsApp gateway callbacks.
type WebhookHandler struct {
	brand     string
	dedup     dedup.Deduper
	queue     Enqueuer
	responder Responder
	log       *logger.Logger
}

// NewWebhookHandler builds the handler. queue may be nil, in which case
// messages are answered inline.
func NewWebhookHandler(brand string, d dedup.Deduper, queue Enqueuer, responder Responder, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{brand: brand, dedup: d, queue: queue, responder: responder, log: log}
}

// WhatsApp accepts one GOWA webhook delivery. The brand comes from the
// ?brand= query parameter, falling back to the configured default.
func (h *WebhookHandler) WhatsApp(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	msg, err := whatsapp.ParseInbound(body)
	if errors.Is(err, whatsapp.ErrIgnored) {
		httpkit.OK(c, transport.WebhookAckResponse{Status: transport.WebhookStatusIgnored})
		return
	}
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	if msg.MessageID != "" && h.dedup != nil {
		first, err := h.dedup.FirstSeen(ctx, string(domain.ChannelWhatsApp), msg.MessageID)
		if err != nil {
			h.log.Warn("inbound dedup unavailable", "messageId", msg.MessageID, "error", err)
		} else if !first {
			httpkit.OK(c, transport.WebhookAckResponse{Status: transport.WebhookStatusDuplicate})
			return
		}
	}

	brand := strings.TrimSpace(c.Query("brand"))
	if brand == "" {
		brand = h.brand
	}
	payload := service.WhatsAppMessage{
		MessageID:  msg.MessageID,
		Brand:      brand,
		RawPhone:   msg.RawPhone,
		PushName:   sanitize.Name(msg.PushName),
		Text:       sanitize.Text(msg.Text),
		ReceivedAt: msg.ReceivedAt,
	}

	if h.queue != nil {
		err := h.queue.EnqueueWhatsAppInbound(ctx, payload)
		if err == nil {
			httpkit.JSON(c, http.StatusAccepted, transport.WebhookAckResponse{Status: transport.WebhookStatusQueued})
			return
		}
		h.log.Error("enqueue whatsapp inbound failed, answering inline", "messageId", msg.MessageID, "error", err)
	}

	if err := h.responder.Respond(ctx, payload); err != nil {
		h.failInline(c, msg.MessageID, err)
		return
	}
	httpkit.OK(c, transport.WebhookAckResponse{Status: transport.WebhookStatusProcessed})
}

// failInline answers a message that could not be processed inline. Permanent
// failures are acknowledged as rejected. Anything else releases the dedup
// mark and answers 5xx so the provider redelivers.
func (h *WebhookHandler) failInline(c *gin.Context, messageID string, err error) {
	if errors.Is(err, service.ErrPermanent) {
		h.log.Warn("whatsapp inbound rejected", "messageId", messageID, "error", err)
		httpkit.OK(c, transport.WebhookAckResponse{Status: transport.WebhookStatusRejected})
		return
	}

	h.log.Error("whatsapp inbound failed", "messageId", messageID, "error", err)
	if messageID != "" && h.dedup != nil {
		if ferr := h.dedup.Forget(context.WithoutCancel(c.Request.Context()), string(domain.ChannelWhatsApp), messageID); ferr != nil {
			h.log.Warn("inbound dedup release failed", "messageId", messageID, "error", ferr)
		}
	}
	httpkit.HandleError(c, err)
}
