package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leadconnect_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadColumns = `id, raw_phone, normalized_phone, brand, display_name, first_touchpoint, last_touchpoint,
	unified_context, created_at, last_interaction_at`

// Repository is the Postgres lead store.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) FindByNormalizedPhone(ctx context.Context, normalizedPhone, brand string) (domain.Lead, bool, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		SELECT `+leadColumns+`
		FROM leads WHERE normalized_phone = $1 AND brand = $2
	`, normalizedPhone, brand))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, false, nil
	}
	if err != nil {
		return domain.Lead{}, false, err
	}
	return lead, true, nil
}

// InsertIfAbsent relies on the (normalized_phone, brand) unique constraint.
// The no-op DO UPDATE makes RETURNING yield the existing row on conflict,
// and xmax = 0 only holds for a freshly inserted tuple.
func (r *Repository) InsertIfAbsent(ctx context.Context, params InsertLeadParams) (domain.Lead, bool, error) {
	var inserted bool
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			id, raw_phone, normalized_phone, brand, display_name, first_touchpoint, last_touchpoint,
			unified_context, created_at, last_interaction_at
		) VALUES ($1, $2, $3, $4, $5, $6, $6, '{}'::jsonb, $7, $7)
		ON CONFLICT (normalized_phone, brand) DO UPDATE SET brand = EXCLUDED.brand
		RETURNING `+leadColumns+`, (xmax = 0) AS inserted
	`, uuid.New(), params.RawPhone, params.NormalizedPhone, params.Brand, params.DisplayName, params.Channel, params.At)

	lead, err := scanLead(row, &inserted)
	if err != nil {
		return domain.Lead{}, false, err
	}
	return lead, inserted, nil
}

func (r *Repository) TouchLastInteraction(ctx context.Context, id uuid.UUID, channel string, at time.Time) (domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads
		SET last_touchpoint = $2, last_interaction_at = GREATEST(last_interaction_at, $3)
		WHERE id = $1
		RETURNING `+leadColumns+`
	`, id, channel, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func scanLead(row pgx.Row, extra ...any) (domain.Lead, error) {
	var lead domain.Lead
	var rawContext []byte

	dest := []any{
		&lead.ID, &lead.RawPhone, &lead.NormalizedPhone, &lead.Brand, &lead.DisplayName,
		&lead.FirstTouchpoint, &lead.LastTouchpoint, &rawContext, &lead.CreatedAt, &lead.LastInteractionAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Lead{}, err
	}

	lead.UnifiedContext = domain.UnifiedContext{}
	if len(rawContext) > 0 {
		if err := json.Unmarshal(rawContext, &lead.UnifiedContext); err != nil {
			return domain.Lead{}, fmt.Errorf("decode unified_context for lead %s: %w", lead.ID, err)
		}
	}
	return lead, nil
}
