package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs
type CreateChatSessionRequest struct {
	Brand string `json:"brand" validate:"required,notblank,max=64"`
	Phone string `json:"phone" validate:"required,notblank,max=32"`
	Name  string `json:"name,omitempty" validate:"max=100"`
}

type SendChatMessageRequest struct {
	Message string `json:"message" validate:"required,notblank,max=4000"`
}

type ContextQuery struct {
	Phone     string `form:"phone" validate:"required,notblank"`
	Brand     string `form:"brand" validate:"required,notblank"`
	Channel   string `form:"channel" validate:"omitempty,oneof=whatsapp web"`
	SessionID string `form:"sessionId"`
}

// Response DTOs
type CreateChatSessionResponse struct {
	SessionID string    `json:"sessionId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ButtonResponse struct {
	Label string `json:"label"`
	ID    string `json:"id"`
}

type ReplyResponse struct {
	LeadID     uuid.UUID        `json:"leadId"`
	SessionID  string           `json:"sessionId"`
	Text       string           `json:"text"`
	Buttons    []ButtonResponse `json:"buttons"`
	Urgency    string           `json:"urgency"`
	NextAction string           `json:"nextAction"`
	Phase      string           `json:"phase"`
	IsNewUser  bool             `json:"isNewUser"`
}

type WebhookAckResponse struct {
	Status string `json:"status"`
}

const (
	WebhookStatusQueued    = "queued"
	WebhookStatusProcessed = "processed"
	WebhookStatusDuplicate = "duplicate"
	WebhookStatusIgnored   = "ignored"
	WebhookStatusRejected  = "rejected"
)

type LogsQuery struct {
	Phone string `form:"phone" validate:"required,notblank"`
	Brand string `form:"brand" validate:"required,notblank"`
	Limit int    `form:"limit" validate:"omitempty,min=1,max=20"`
}

type LogEntryResponse struct {
	ID           uuid.UUID `json:"id"`
	SessionID    string    `json:"sessionId"`
	Channel      string    `json:"channel"`
	UserMessage  string    `json:"userMessage"`
	Reply        string    `json:"reply"`
	Buttons      []string  `json:"buttons"`
	Urgency      string    `json:"urgency"`
	NextAction   string    `json:"nextAction"`
	Phase        string    `json:"phase"`
	OutputTokens int       `json:"outputTokens"`
	ElapsedMs    int64     `json:"elapsedMs"`
	CreatedAt    time.Time `json:"createdAt"`
}
