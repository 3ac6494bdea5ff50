package repository

import (
	"context"
	"sort"
	"sync"

	"leadconnect_backend/internal/conversations/domain"

	"github.com/google/uuid"
)

// InMemory is an in-process conversation store for tests and local runs.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[sessionKey]domain.Session
	messages []domain.Message
	logs     []LogEntry
}

func NewInMemory() *InMemory {
	return &InMemory{sessions: make(map[sessionKey]domain.Session)}
}

type sessionKey struct {
	leadID uuid.UUID
	id     string
}

func (m *InMemory) FindSession(_ context.Context, leadID uuid.UUID, sessionID string) (domain.Session, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionKey{leadID, sessionID}]
	return s, ok, nil
}

func (m *InMemory) ListRecent(_ context.Context, leadID uuid.UUID, channel domain.Channel, limit int) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []domain.Message
	for _, msg := range m.messages {
		if msg.LeadID == leadID && msg.Channel == channel {
			matched = append(matched, msg)
		}
	}
	// Appends are chronological; a stable sort keeps insertion order for equal timestamps.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	limit = clampLimit(limit)
	out := make([]domain.Message, 0, limit)
	for i := len(matched) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, matched[i])
	}
	return out, nil
}

func (m *InMemory) StoreExchange(_ context.Context, ex Exchange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, msg := range []domain.Message{ex.Customer, ex.Assistant} {
		msg.LeadID = ex.LeadID
		msg.SessionID = ex.SessionID
		msg.Channel = ex.Channel
		m.messages = append(m.messages, msg)
	}

	key := sessionKey{ex.LeadID, ex.SessionID}
	s, ok := m.sessions[key]
	if !ok {
		s = domain.Session{ID: ex.SessionID, LeadID: ex.LeadID, Channel: ex.Channel, CreatedAt: ex.At}
	}
	s.Status = domain.SessionStatusActive
	s.MessageCount += 2
	s.LastMessageAt = ex.At
	m.sessions[key] = s

	entry := ex.Log
	entry.LeadID = ex.LeadID
	entry.SessionID = ex.SessionID
	entry.Channel = ex.Channel
	entry.Buttons = append([]string(nil), entry.Buttons...)
	m.logs = append(m.logs, entry)
	return nil
}

func (m *InMemory) ListLogs(_ context.Context, leadID uuid.UUID, limit int) ([]LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit = clampLimit(limit)
	var out []LogEntry
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.logs[i].LeadID == leadID {
			out = append(out, m.logs[i])
		}
	}
	return out, nil
}

// AppendMessage seeds history directly, without a session bump.
func (m *InMemory) AppendMessage(msg domain.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
}

// PutSession seeds or replaces a session.
func (m *InMemory) PutSession(s domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionKey{s.LeadID, s.ID}] = s
}
