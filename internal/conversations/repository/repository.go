package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadconnect_backend/internal/conversations/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the Postgres conversation store.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) FindSession(ctx context.Context, leadID uuid.UUID, sessionID string) (domain.Session, bool, error) {
	var s domain.Session
	var channel string
	var lastMessageAt *time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT id, lead_id, channel, status, message_count, last_message_at, created_at
		FROM conversation_sessions WHERE lead_id = $1 AND id = $2
	`, leadID, sessionID).Scan(&s.ID, &s.LeadID, &channel, &s.Status, &s.MessageCount, &lastMessageAt, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, err
	}
	s.Channel = domain.Channel(channel)
	if lastMessageAt != nil {
		s.LastMessageAt = *lastMessageAt
	}
	return s, true, nil
}

func (r *Repository) ListRecent(ctx context.Context, leadID uuid.UUID, channel domain.Channel, limit int) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, session_id, channel, role, content, created_at
		FROM conversation_messages
		WHERE lead_id = $1 AND channel = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, leadID, string(channel), clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		var ch, role string
		if err := rows.Scan(&m.ID, &m.LeadID, &m.SessionID, &ch, &role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Channel = domain.Channel(ch)
		m.Role = domain.Role(role)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) StoreExchange(ctx context.Context, ex Exchange) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, m := range []domain.Message{ex.Customer, ex.Assistant} {
			if _, err := tx.Exec(ctx, `
				INSERT INTO conversation_messages (id, lead_id, session_id, channel, role, content, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, m.ID, ex.LeadID, ex.SessionID, string(ex.Channel), string(m.Role), m.Content, m.CreatedAt); err != nil {
				return fmt.Errorf("insert %s message: %w", m.Role, err)
			}
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO conversation_sessions (id, lead_id, channel, status, message_count, last_message_at, created_at)
			VALUES ($1, $2, $3, 'active', 2, $4, $4)
			ON CONFLICT (lead_id, id) DO UPDATE SET
				message_count = conversation_sessions.message_count + 2,
				last_message_at = EXCLUDED.last_message_at,
				status = 'active'
		`, ex.SessionID, ex.LeadID, string(ex.Channel), ex.At); err != nil {
			return fmt.Errorf("upsert session: %w", err)
		}

		l := ex.Log
		buttons := l.Buttons
		if buttons == nil {
			buttons = []string{}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO conversation_logs (
				id, lead_id, session_id, channel, user_message, reply, buttons,
				urgency, next_action, phase, output_tokens, elapsed_ms, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		`, l.ID, ex.LeadID, ex.SessionID, string(ex.Channel), l.UserMessage, l.Reply, buttons,
			string(l.Urgency), l.NextAction, string(l.Phase), l.OutputTokens, l.ElapsedMs, l.CreatedAt); err != nil {
			return fmt.Errorf("insert log: %w", err)
		}
		return nil
	})
}

func (r *Repository) ListLogs(ctx context.Context, leadID uuid.UUID, limit int) ([]LogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, session_id, channel, user_message, reply, buttons,
			urgency, next_action, phase, output_tokens, elapsed_ms, created_at
		FROM conversation_logs
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, leadID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LogEntry
	for rows.Next() {
		var l LogEntry
		var channel, urgency, phase string
		if err := rows.Scan(&l.ID, &l.LeadID, &l.SessionID, &channel, &l.UserMessage, &l.Reply, &l.Buttons,
			&urgency, &l.NextAction, &phase, &l.OutputTokens, &l.ElapsedMs, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Channel = domain.Channel(channel)
		l.Urgency = domain.Urgency(urgency)
		l.Phase = domain.Phase(phase)
		out = append(out, l)
	}
	return out, rows.Err()
}
