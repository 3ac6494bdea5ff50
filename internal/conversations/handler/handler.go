package handler

import (
	"net/http"

	"leadconnect_backend/internal/conversations/service"
	"leadconnect_backend/internal/conversations/transport"
	"leadconnect_backend/platform/httpkit"
	"leadconnect_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// bindJSON decodes and validates the body, writing the 400 itself on failure.
func bindJSON(c *gin.Context, val *validator.Validator, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Describe(err))
		return false
	}
	return true
}

func toReplyResponse(r service.Reply) transport.ReplyResponse {
	buttons := make([]transport.ButtonResponse, 0, len(r.Buttons))
	for _, b := range r.Buttons {
		buttons = append(buttons, transport.ButtonResponse{Label: b.Label, ID: b.ID})
	}
	return transport.ReplyResponse{
		LeadID:     r.LeadID,
		SessionID:  r.SessionID,
		Text:       r.Text,
		Buttons:    buttons,
		Urgency:    string(r.Urgency),
		NextAction: r.NextAction,
		Phase:      string(r.Phase),
		IsNewUser:  r.IsNewUser,
	}
}
