package handler

import (
	"net/http"
	"strings"
	"time"

	"leadconnect_backend/internal/conversations/domain"
	"leadconnect_backend/internal/conversations/service"
	"leadconnect_backend/internal/conversations/transport"
	"leadconnect_backend/internal/leads/identity"
	"leadconnect_backend/platform/httpkit"
	"leadconnect_backend/platform/sanitize"
	"leadconnect_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ChatHandler serves the web chat widget.
type ChatHandler struct {
	pipeline service.Handler
	tokens   *httpkit.ChatTokens
	val      *validator.Validator
	now      func() time.Time
}

func NewChatHandler(pipeline service.Handler, tokens *httpkit.ChatTokens, val *validator.Validator) *ChatHandler {
	return &ChatHandler{pipeline: pipeline, tokens: tokens, val: val, now: time.Now}
}

// CreateSession starts a web chat session and returns its signed token.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req transport.CreateChatSessionRequest
	if !bindJSON(c, h.val, &req) {
		return
	}
	brand := strings.TrimSpace(req.Brand)
	if _, err := identity.Key(req.Phone, brand); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	sessionID := uuid.NewString()
	token, expiresAt, err := h.tokens.Issue(httpkit.ChatSession{
		SessionID: sessionID,
		Brand:     brand,
		Phone:     req.Phone,
		Name:      sanitize.Name(req.Name),
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.CreateChatSessionResponse{
		SessionID: sessionID,
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
	})
}

// SendMessage runs one web chat turn for the token's session.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	session, ok := httpkit.MustGetChatSession(c)
	if !ok {
		return
	}
	var req transport.SendChatMessageRequest
	if !bindJSON(c, h.val, &req) {
		return
	}

	reply, err := h.pipeline.Handle(c.Request.Context(), service.Inbound{
		Channel:     domain.ChannelWeb,
		Brand:       session.Brand,
		RawPhone:    session.Phone,
		DisplayName: session.Name,
		SessionID:   session.SessionID,
		Text:        sanitize.Text(req.Message),
		ReceivedAt:  h.now(),
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, toReplyResponse(reply))
}
