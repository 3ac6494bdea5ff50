package handler

import (
	"context"
	"net/http"

	"leadconnect_backend/internal/conversations/domain"
	"leadconnect_backend/internal/conversations/repository"
	"leadconnect_backend/internal/conversations/transport"
	"leadconnect_backend/platform/httpkit"
	"leadconnect_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// ContextInspector reads a lead's Context and exchange logs without side effects.
type ContextInspector interface {
	Inspect(ctx context.Context, rawPhone, brand string, channel domain.Channel, sessionID string) (domain.Context, bool, error)
	Logs(ctx context.Context, rawPhone, brand string, limit int) ([]repository.LogEntry, bool, error)
}

const defaultLogLimit = 20

type AdminHandler struct {
	inspector ContextInspector
	val       *validator.Validator
}

func NewAdminHandler(inspector ContextInspector, val *validator.Validator) *AdminHandler {
	return &AdminHandler{inspector: inspector, val: val}
}

func (h *AdminHandler) Context(c *gin.Context) {
	var q transport.ContextQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Describe(err))
		return
	}

	channel := domain.ChannelWhatsApp
	if q.Channel != "" {
		channel = domain.Channel(q.Channel)
	}

	convo, found, err := h.inspector.Inspect(c.Request.Context(), q.Phone, q.Brand, channel, q.SessionID)
	if httpkit.HandleError(c, err) {
		return
	}
	if !found {
		httpkit.Error(c, http.StatusNotFound, "lead not found", nil)
		return
	}

	httpkit.OK(c, convo)
}

func (h *AdminHandler) Logs(c *gin.Context) {
	var q transport.LogsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(q); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Describe(err))
		return
	}
	limit := q.Limit
	if limit == 0 {
		limit = defaultLogLimit
	}

	entries, found, err := h.inspector.Logs(c.Request.Context(), q.Phone, q.Brand, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	if !found {
		httpkit.Error(c, http.StatusNotFound, "lead not found", nil)
		return
	}

	out := make([]transport.LogEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, transport.LogEntryResponse{
			ID:           e.ID,
			SessionID:    e.SessionID,
			Channel:      string(e.Channel),
			UserMessage:  e.UserMessage,
			Reply:        e.Reply,
			Buttons:      e.Buttons,
			Urgency:      string(e.Urgency),
			NextAction:   e.NextAction,
			Phase:        string(e.Phase),
			OutputTokens: e.OutputTokens,
			ElapsedMs:    e.ElapsedMs,
			CreatedAt:    e.CreatedAt,
		})
	}
	httpkit.OK(c, gin.H{"logs": out})
}
