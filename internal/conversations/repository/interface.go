package repository

import (
	"context"
	"time"

	"leadconnect_backend/internal/conversations/domain"

	"github.com/google/uuid"
)

// MaxRecent caps ListRecent regardless of the requested limit.
const MaxRecent = 20

// LogEntry is one stored exchange summary.
type LogEntry struct {
	ID           uuid.UUID
	LeadID       uuid.UUID
	SessionID    string
	Channel      domain.Channel
	UserMessage  string
	Reply        string
	Buttons      []string
	Urgency      domain.Urgency
	NextAction   string
	Phase        domain.Phase
	OutputTokens int
	ElapsedMs    int64
	CreatedAt    time.Time
}

// Exchange is everything one request writes: the customer turn, the assistant
// turn, the session bump and the log line.
type Exchange struct {
	LeadID    uuid.UUID
	SessionID string
	Channel   domain.Channel
	Customer  domain.Message
	Assistant domain.Message
	Log       LogEntry
	At        time.Time
}

// SessionReader reads channel sessions. Sessions belong to one lead, so an
// id reused by another lead is a miss. found=false means no prior session.
type SessionReader interface {
	FindSession(ctx context.Context, leadID uuid.UUID, sessionID string) (domain.Session, bool, error)
}

// MessageReader lists history newest first.
type MessageReader interface {
	ListRecent(ctx context.Context, leadID uuid.UUID, channel domain.Channel, limit int) ([]domain.Message, error)
}

// ExchangeWriter appends messages, upserts the session and writes the log atomically.
type ExchangeWriter interface {
	StoreExchange(ctx context.Context, ex Exchange) error
}

// LogReader lists stored log lines newest first.
type LogReader interface {
	ListLogs(ctx context.Context, leadID uuid.UUID, limit int) ([]LogEntry, error)
}

// ConversationsRepository is the full conversation store capability.
type ConversationsRepository interface {
	SessionReader
	MessageReader
	ExchangeWriter
	LogReader
}

var (
	_ ConversationsRepository = (*Repository)(nil)
	_ ConversationsRepository = (*InMemory)(nil)
)

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxRecent {
		return MaxRecent
	}
	return limit
}
